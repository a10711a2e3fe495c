package memory

import (
	"context"

	"github.com/caio/vmfleet/internal/domain"
)

type sessionRepo struct {
	store *Store
}

func (r *sessionRepo) Create(_ context.Context, session *domain.UserSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepo) GetByUserID(_ context.Context, userID string) (*domain.UserSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.sessions {
		if s.UserID == userID {
			cp := s
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *sessionRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, s := range r.store.sessions {
		if s.UserID == userID {
			delete(r.store.sessions, id)
		}
	}
	return nil
}
