package domain

import "time"

// AccessGrant is a time-bounded permission linking a user to a VM.
// A grant is active iff ExpiresAt is strictly after "now" at query time;
// expired grants are not evicted eagerly (lazy expiry).
type AccessGrant struct {
	VMID      string    `json:"vmId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the grant has not yet expired at now.
func (g AccessGrant) Active(now time.Time) bool {
	return g.ExpiresAt.After(now)
}

// GrantSet holds a user's VM access grants, unique by VM id. The zero
// value is an empty set. Callers pass "now" explicitly; the set never
// reads the system clock.
type GrantSet []AccessGrant

// Grant inserts a grant for vmID, replacing any existing grant for the
// same VM. One active grant per VM per user, last call wins.
func (s *GrantSet) Grant(vmID string, expiresAt time.Time) {
	for i, g := range *s {
		if g.VMID == vmID {
			(*s)[i].ExpiresAt = expiresAt
			return
		}
	}
	*s = append(*s, AccessGrant{VMID: vmID, ExpiresAt: expiresAt})
}

// Revoke removes the grant for vmID. No-op when absent.
func (s *GrantSet) Revoke(vmID string) {
	for i, g := range *s {
		if g.VMID == vmID {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return
		}
	}
}

// Extend replaces the expiry of an existing grant. Returns
// ErrGrantNotFound when no grant exists for vmID.
func (s *GrantSet) Extend(vmID string, newExpiresAt time.Time) error {
	for i, g := range *s {
		if g.VMID == vmID {
			(*s)[i].ExpiresAt = newExpiresAt
			return nil
		}
	}
	return ErrGrantNotFound
}

// Get returns the grant for vmID, if present.
func (s GrantSet) Get(vmID string) (AccessGrant, bool) {
	for _, g := range s {
		if g.VMID == vmID {
			return g, true
		}
	}
	return AccessGrant{}, false
}

// ActiveVMIDs returns the set of VM ids with an unexpired grant at now.
func (s GrantSet) ActiveVMIDs(now time.Time) map[string]bool {
	ids := make(map[string]bool, len(s))
	for _, g := range s {
		if g.Active(now) {
			ids[g.VMID] = true
		}
	}
	return ids
}

// HasActive reports whether the set holds an unexpired grant for vmID.
func (s GrantSet) HasActive(vmID string, now time.Time) bool {
	g, ok := s.Get(vmID)
	return ok && g.Active(now)
}

// PurgeExpired removes all grants with ExpiresAt <= now and returns how
// many were removed. Idempotent, safe to call on a schedule.
func (s *GrantSet) PurgeExpired(now time.Time) int {
	kept := (*s)[:0]
	removed := 0
	for _, g := range *s {
		if g.Active(now) {
			kept = append(kept, g)
		} else {
			removed++
		}
	}
	*s = kept
	return removed
}

// Clone returns an independent copy of the set.
func (s GrantSet) Clone() GrantSet {
	if s == nil {
		return nil
	}
	cp := make(GrantSet, len(s))
	copy(cp, s)
	return cp
}
