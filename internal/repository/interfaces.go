package repository

import (
	"context"

	"github.com/caio/vmfleet/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update replaces the stored record wholesale; partial field
	// mutation is not supported to avoid lost updates.
	Update(ctx context.Context, user *domain.User) error
}

type VMRepository interface {
	Create(ctx context.Context, vm *domain.VirtualMachine) error
	GetByID(ctx context.Context, id string) (*domain.VirtualMachine, error)
	List(ctx context.Context) ([]*domain.VirtualMachine, error)
	Update(ctx context.Context, vm *domain.VirtualMachine) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID string) (*domain.UserSession, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type Repositories struct {
	User    UserRepository
	VM      VMRepository
	Session SessionRepository
}
