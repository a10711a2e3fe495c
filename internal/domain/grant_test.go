package domain_test

import (
	"testing"
	"time"

	"github.com/caio/vmfleet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestGrantSet_GrantReplacesByVM(t *testing.T) {
	var s domain.GrantSet

	s.Grant("vm1", base.Add(24*time.Hour))
	s.Grant("vm2", base.Add(48*time.Hour))
	s.Grant("vm1", base.Add(72*time.Hour))

	assert.Len(t, s, 2, "re-granting the same VM must replace, not append")

	g, ok := s.Get("vm1")
	require.True(t, ok)
	assert.Equal(t, base.Add(72*time.Hour), g.ExpiresAt, "last grant wins")
}

func TestGrantSet_Revoke(t *testing.T) {
	var s domain.GrantSet
	s.Grant("vm1", base.Add(24*time.Hour))

	s.Revoke("vm1")
	assert.Empty(t, s)

	// Revoking an absent grant is a no-op
	s.Revoke("vm1")
	s.Revoke("never-existed")
	assert.Empty(t, s)
}

func TestGrantSet_Extend(t *testing.T) {
	var s domain.GrantSet
	s.Grant("vm1", base.Add(24*time.Hour))

	err := s.Extend("vm1", base.Add(10*24*time.Hour))
	require.NoError(t, err)

	g, _ := s.Get("vm1")
	assert.Equal(t, base.Add(10*24*time.Hour), g.ExpiresAt)

	err = s.Extend("vm2", base.Add(24*time.Hour))
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
}

func TestGrantSet_ActiveVMIDs(t *testing.T) {
	var s domain.GrantSet
	s.Grant("vm1", base.Add(time.Hour))
	s.Grant("vm2", base.Add(-time.Hour))
	s.Grant("vm3", base) // expires exactly now

	active := s.ActiveVMIDs(base)
	assert.True(t, active["vm1"])
	assert.False(t, active["vm2"], "expired grant must not be active")
	assert.False(t, active["vm3"], "a grant expiring exactly at now is inactive")
}

func TestGrantSet_HasActive(t *testing.T) {
	var s domain.GrantSet
	s.Grant("vm1", base.Add(time.Hour))

	assert.True(t, s.HasActive("vm1", base))
	assert.False(t, s.HasActive("vm1", base.Add(2*time.Hour)))
	assert.False(t, s.HasActive("vm2", base))
}

func TestGrantSet_PurgeExpired(t *testing.T) {
	var s domain.GrantSet
	s.Grant("vm1", base.Add(time.Hour))
	s.Grant("vm2", base.Add(-time.Hour))
	s.Grant("vm3", base)

	removed := s.PurgeExpired(base)
	assert.Equal(t, 2, removed)
	assert.Len(t, s, 1)

	// Idempotent
	removed = s.PurgeExpired(base)
	assert.Equal(t, 0, removed)
	assert.Len(t, s, 1)
}

func TestGrantSet_CloneIsIndependent(t *testing.T) {
	var s domain.GrantSet
	s.Grant("vm1", base.Add(time.Hour))

	cp := s.Clone()
	cp.Grant("vm1", base.Add(48*time.Hour))

	g, _ := s.Get("vm1")
	assert.Equal(t, base.Add(time.Hour), g.ExpiresAt, "mutating a clone must not touch the original")
}

func TestVMStatus_Toggled(t *testing.T) {
	tests := []struct {
		name   string
		status domain.VMStatus
		want   domain.VMStatus
		ok     bool
	}{
		{"running stops", domain.VMStatusRunning, domain.VMStatusStopped, true},
		{"stopped starts", domain.VMStatusStopped, domain.VMStatusRunning, true},
		{"error is terminal", domain.VMStatusError, domain.VMStatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.status.Toggled()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
