package memory

import (
	"context"
	"time"

	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/repository"
)

// Seed loads the demo fleet: one founder, one admin, two clients and
// four machines, with one pre-existing 30-day grant. founderID becomes
// the protected founder account.
func Seed(ctx context.Context, repos *repository.Repositories, founderID string, now time.Time) error {
	users := []*domain.User{
		{
			ID:        founderID,
			Username:  "Founder",
			Email:     "founder@example.com",
			AvatarURL: "https://cdn.discordapp.com/embed/avatars/0.png",
			Role:      domain.RoleFounder,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "2",
			Username:  "Admin",
			Email:     "admin@example.com",
			AvatarURL: "https://cdn.discordapp.com/embed/avatars/1.png",
			Role:      domain.RoleAdmin,
			CreatedAt: now.Add(time.Second),
			UpdatedAt: now,
		},
		{
			ID:        "3",
			Username:  "Client1",
			Email:     "client1@example.com",
			AvatarURL: "https://cdn.discordapp.com/embed/avatars/2.png",
			Role:      domain.RoleClient,
			VMAccess: domain.GrantSet{
				{VMID: "vm1", ExpiresAt: now.Add(30 * 24 * time.Hour)},
			},
			CreatedAt: now.Add(2 * time.Second),
			UpdatedAt: now,
		},
		{
			ID:        "4",
			Username:  "Client2",
			Email:     "client2@example.com",
			AvatarURL: "https://cdn.discordapp.com/embed/avatars/3.png",
			Role:      domain.RoleClient,
			CreatedAt: now.Add(3 * time.Second),
			UpdatedAt: now,
		},
	}

	vms := []*domain.VirtualMachine{
		{ID: "vm1", Name: "Production VM", Status: domain.VMStatusRunning, IP: "192.168.1.100", Type: "Standard_DS3_v2", Location: "Brazil South", OwnerID: "3"},
		{ID: "vm2", Name: "Staging VM", Status: domain.VMStatusStopped, IP: "192.168.1.101", Type: "Standard_DS2_v2", Location: "Brazil South"},
		{ID: "vm3", Name: "Development VM", Status: domain.VMStatusError, IP: "192.168.1.102", Type: "Standard_DS1_v2", Location: "Brazil South"},
		{ID: "vm4", Name: "Test VM", Status: domain.VMStatusRunning, IP: "192.168.1.103", Type: "Standard_B2s", Location: "East US"},
	}

	for _, u := range users {
		if err := repos.User.Create(ctx, u); err != nil {
			return err
		}
	}
	for _, vm := range vms {
		if err := repos.VM.Create(ctx, vm); err != nil {
			return err
		}
	}
	return nil
}
