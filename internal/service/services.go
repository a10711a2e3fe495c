package service

import (
	"github.com/caio/vmfleet/internal/config"
	"github.com/caio/vmfleet/internal/policy"
	"github.com/caio/vmfleet/internal/repository"
)

type Services struct {
	Auth   *AuthService
	Access *AccessService
	VM     *VMService
}

func NewServices(repos *repository.Repositories, pol *policy.Policy, provider IdentityProvider, clock Clock, notifier Notifier, cfg *config.Config) *Services {
	return &Services{
		Auth:   NewAuthService(repos.User, repos.Session, provider, clock, cfg),
		Access: NewAccessService(repos.User, repos.VM, pol, clock, notifier),
		VM:     NewVMService(repos.User, repos.VM, clock, notifier, cfg.PowerActionDelay, cfg.PowerActionTimeout),
	}
}
