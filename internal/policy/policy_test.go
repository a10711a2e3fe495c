package policy_test

import (
	"testing"

	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/policy"
	"github.com/stretchr/testify/assert"
)

const protectedID = "1345386650502565998"

func user(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Username: "u-" + id, Role: role}
}

func TestCanSetRole(t *testing.T) {
	p := policy.New(protectedID)

	tests := []struct {
		name    string
		actor   *domain.User
		target  *domain.User
		desired domain.Role
		want    bool
	}{
		{"founder sets admin", user("f", domain.RoleFounder), user("t", domain.RoleClient), domain.RoleAdmin, true},
		{"founder sets founder", user("f", domain.RoleFounder), user("t", domain.RoleClient), domain.RoleFounder, true},
		{"founder demotes admin", user("f", domain.RoleFounder), user("t", domain.RoleAdmin), domain.RoleClient, true},
		{"admin sets client", user("a", domain.RoleAdmin), user("t", domain.RoleAdmin), domain.RoleClient, true},
		{"admin cannot promote to admin", user("a", domain.RoleAdmin), user("t", domain.RoleClient), domain.RoleAdmin, false},
		{"admin cannot promote to founder", user("a", domain.RoleAdmin), user("t", domain.RoleClient), domain.RoleFounder, false},
		{"client cannot set any role", user("c", domain.RoleClient), user("t", domain.RoleClient), domain.RoleClient, false},
		{"protected identity immutable for founder", user("f", domain.RoleFounder), user(protectedID, domain.RoleFounder), domain.RoleClient, false},
		{"protected identity immutable for itself", user(protectedID, domain.RoleFounder), user(protectedID, domain.RoleFounder), domain.RoleAdmin, false},
		{"nil actor", nil, user("t", domain.RoleClient), domain.RoleClient, false},
		{"nil target", user("f", domain.RoleFounder), nil, domain.RoleClient, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanSetRole(tt.actor, tt.target, tt.desired))
		})
	}
}

func TestCanManageVMGrants(t *testing.T) {
	p := policy.New(protectedID)

	assert.True(t, p.CanManageVMGrants(user("f", domain.RoleFounder)))
	assert.True(t, p.CanManageVMGrants(user("a", domain.RoleAdmin)))
	assert.False(t, p.CanManageVMGrants(user("c", domain.RoleClient)))
	assert.False(t, p.CanManageVMGrants(nil))
}

func TestIsElevated(t *testing.T) {
	assert.True(t, policy.IsElevated(domain.RoleFounder))
	assert.True(t, policy.IsElevated(domain.RoleAdmin))
	assert.False(t, policy.IsElevated(domain.RoleClient))
	assert.False(t, policy.IsElevated(domain.Role("something-else")))
}

func TestIsProtected(t *testing.T) {
	p := policy.New(protectedID)
	assert.True(t, p.IsProtected(protectedID))
	assert.False(t, p.IsProtected("2"))

	// An empty protected id must never match everything
	empty := policy.New("")
	assert.False(t, empty.IsProtected(""))
	assert.False(t, empty.IsProtected("2"))
}
