// Package memory backs the repository interfaces with in-process maps.
// The dashboard holds all state in memory by design; there is no
// durable store behind it. Records are copied on the way in and out so
// callers can only change state through Update.
package memory

import (
	"sync"

	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users    map[string]domain.User
	vms      map[string]domain.VirtualMachine
	sessions map[string]domain.UserSession
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		vms:      make(map[string]domain.VirtualMachine),
		sessions: make(map[string]domain.UserSession),
	}
}

// NewRepositories wires every repository onto a single shared store.
func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		User:    &userRepo{store: s},
		VM:      &vmRepo{store: s},
		Session: &sessionRepo{store: s},
	}
}
