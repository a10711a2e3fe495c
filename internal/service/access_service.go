package service

import (
	"context"
	"fmt"
	"time"

	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/policy"
	"github.com/caio/vmfleet/internal/repository"
)

// AccessService owns every mutation of roles and VM access grants, plus
// the read path that resolves which machines a user may see. Each
// operation re-checks the permission policy before touching state and
// writes whole records back through the repositories.
type AccessService struct {
	userRepo repository.UserRepository
	vmRepo   repository.VMRepository
	pol      *policy.Policy
	clock    Clock
	notifier Notifier
}

func NewAccessService(userRepo repository.UserRepository, vmRepo repository.VMRepository, pol *policy.Policy, clock Clock, notifier Notifier) *AccessService {
	return &AccessService{
		userRepo: userRepo,
		vmRepo:   vmRepo,
		pol:      pol,
		clock:    clock,
		notifier: notifier,
	}
}

// SetRole changes targetID's role to desired on behalf of actorID.
// Founders may set any role, admins only client. The protected founder
// identity is immutable, and the last remaining founder account cannot
// be demoted.
func (s *AccessService) SetRole(ctx context.Context, actorID, targetID string, desired domain.Role) error {
	if !desired.IsValid() {
		return domain.ErrInvalidRole
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if s.pol.IsProtected(target.ID) {
		return domain.ErrProtectedIdentity
	}
	if !s.pol.CanSetRole(actor, target, desired) {
		return domain.ErrPermissionDenied
	}
	if target.Role == domain.RoleFounder && desired != domain.RoleFounder {
		founders, err := s.countFounders(ctx)
		if err != nil {
			return err
		}
		if founders <= 1 {
			return domain.ErrLastFounder
		}
	}

	target.Role = desired
	target.UpdatedAt = s.clock.Now()
	if err := s.userRepo.Update(ctx, target); err != nil {
		return err
	}

	s.notify(Event{Type: EventRoleChanged, UserID: target.ID, Role: desired.String()})
	return nil
}

// AssignVM grants userID access to vmID for durationDays, replacing any
// prior grant for the same machine. The VM's informational owner is set
// to the assignee; last assignment wins.
func (s *AccessService) AssignVM(ctx context.Context, actorID, vmID, userID string, durationDays int) error {
	if durationDays <= 0 {
		return domain.ErrInvalidDuration
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.pol.CanManageVMGrants(actor) {
		return domain.ErrPermissionDenied
	}

	vm, err := s.vmRepo.GetByID(ctx, vmID)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	user.VMAccess.Grant(vmID, now.AddDate(0, 0, durationDays))
	user.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	vm.OwnerID = userID
	if err := s.vmRepo.Update(ctx, vm); err != nil {
		return err
	}

	s.notify(Event{Type: EventVMAssigned, VMID: vmID, UserID: userID})
	return nil
}

// RevokeVM removes userID's grant for vmID. Revoking an absent grant is
// a no-op, so the call is idempotent. The VM's owner is cleared only
// when it still points at the revoked user.
func (s *AccessService) RevokeVM(ctx context.Context, actorID, vmID, userID string) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.pol.CanManageVMGrants(actor) {
		return domain.ErrPermissionDenied
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.VMAccess.Revoke(vmID)
	user.UpdatedAt = s.clock.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	vm, err := s.vmRepo.GetByID(ctx, vmID)
	if err == nil && vm.OwnerID == userID {
		vm.OwnerID = ""
		if err := s.vmRepo.Update(ctx, vm); err != nil {
			return err
		}
	}

	s.notify(Event{Type: EventVMRevoked, VMID: vmID, UserID: userID})
	return nil
}

// ExtendVM replaces the expiry of an existing grant. The new expiry
// must be strictly in the future.
func (s *AccessService) ExtendVM(ctx context.Context, actorID, vmID, userID string, newExpiresAt time.Time) error {
	now := s.clock.Now()
	if !newExpiresAt.After(now) {
		return domain.ErrPastDate
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.pol.CanManageVMGrants(actor) {
		return domain.ErrPermissionDenied
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.VMAccess.Extend(vmID, newExpiresAt); err != nil {
		return err
	}
	user.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.notify(Event{Type: EventGrantExtended, VMID: vmID, UserID: userID})
	return nil
}

// VisibleVMs resolves the machines requesterID may see right now: the
// whole fleet for elevated roles, the unexpired-granted subset for
// clients. Each result carries the owner's username when resolvable.
func (s *AccessService) VisibleVMs(ctx context.Context, requesterID string) ([]domain.AnnotatedVM, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	vms, err := s.vmRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	out := make([]domain.AnnotatedVM, 0, len(vms))
	if policy.IsElevated(requester.Role) {
		for _, vm := range vms {
			out = append(out, domain.AnnotatedVM{VirtualMachine: *vm, OwnerName: names[vm.OwnerID]})
		}
		return out, nil
	}

	active := requester.VMAccess.ActiveVMIDs(s.clock.Now())
	for _, vm := range vms {
		if active[vm.ID] {
			out = append(out, domain.AnnotatedVM{VirtualMachine: *vm, OwnerName: names[vm.OwnerID]})
		}
	}
	return out, nil
}

// CanAccessVM reports whether requesterID may operate on vmID: elevated
// roles always, clients only while holding an unexpired grant.
func (s *AccessService) CanAccessVM(ctx context.Context, requesterID, vmID string) (bool, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return false, err
	}
	if policy.IsElevated(requester.Role) {
		return true, nil
	}
	return requester.VMAccess.HasActive(vmID, s.clock.Now()), nil
}

// OwnerName resolves an owner id to a username. Returns "" when the id
// is unset or matches no user; callers render their own fallback.
func (s *AccessService) OwnerName(ctx context.Context, ownerID string) string {
	if ownerID == "" {
		return ""
	}
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return ""
	}
	return owner.Username
}

// ListUsers returns every user, for elevated actors only.
func (s *AccessService) ListUsers(ctx context.Context, actorID string) ([]*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.IsElevated(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	return s.userRepo.List(ctx)
}

// PurgeExpiredGrants drops every expired grant across all users and
// returns how many were removed. Expiry is otherwise lazy, so this only
// trims memory; visibility never depends on it running.
func (s *AccessService) PurgeExpiredGrants(ctx context.Context) (int, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	total := 0
	for _, u := range users {
		removed := u.VMAccess.PurgeExpired(now)
		if removed == 0 {
			continue
		}
		if err := s.userRepo.Update(ctx, u); err != nil {
			return total, fmt.Errorf("purging grants for %s: %w", u.ID, err)
		}
		total += removed
	}
	return total, nil
}

func (s *AccessService) countFounders(ctx context.Context) (int, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range users {
		if u.Role == domain.RoleFounder {
			n++
		}
	}
	return n, nil
}

func (s *AccessService) notify(ev Event) {
	if s.notifier != nil {
		s.notifier.Notify(ev)
	}
}
