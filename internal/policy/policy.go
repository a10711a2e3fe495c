// Package policy centralizes every authorization decision for the
// dashboard. All functions are pure and never error; callers surface
// domain.ErrPermissionDenied when a check comes back false.
package policy

import "github.com/caio/vmfleet/internal/domain"

// Policy evaluates role and grant permissions. ProtectedID is the user
// whose role can never be changed by anyone, itself included.
type Policy struct {
	ProtectedID string
}

func New(protectedID string) *Policy {
	return &Policy{ProtectedID: protectedID}
}

// IsElevated reports whether a role sees the full fleet unconditionally.
func IsElevated(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleFounder
}

// CanManageVMGrants reports whether the actor may assign, revoke or
// extend VM access for any user. Clients only view their own machines.
func (p *Policy) CanManageVMGrants(actor *domain.User) bool {
	return actor != nil && IsElevated(actor.Role)
}

// IsProtected reports whether userID is the protected founder identity.
func (p *Policy) IsProtected(userID string) bool {
	return p.ProtectedID != "" && userID == p.ProtectedID
}

// CanSetRole reports whether actor may change target's role to desired.
// Founders may assign any role, admins may only demote to client, and
// the protected identity is immutable regardless of actor.
func (p *Policy) CanSetRole(actor, target *domain.User, desired domain.Role) bool {
	if actor == nil || target == nil {
		return false
	}
	if p.IsProtected(target.ID) {
		return false
	}
	switch actor.Role {
	case domain.RoleFounder:
		return true
	case domain.RoleAdmin:
		return desired == domain.RoleClient
	}
	return false
}
