package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/caio/vmfleet/internal/domain"
)

type userRepo struct {
	store *Store
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return domain.ErrUserNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.users[user.ID] = *user.Clone()
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepo) List(_ context.Context) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store.users[user.ID] = *user.Clone()
	return nil
}
