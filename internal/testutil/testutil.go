package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caio/vmfleet/internal/api"
	"github.com/caio/vmfleet/internal/config"
	"github.com/caio/vmfleet/internal/discord"
	"github.com/caio/vmfleet/internal/policy"
	"github.com/caio/vmfleet/internal/repository"
	"github.com/caio/vmfleet/internal/repository/memory"
	"github.com/caio/vmfleet/internal/service"
	"github.com/caio/vmfleet/internal/websocket"
)

// FounderID is the protected founder identity used across tests.
const FounderID = "1345386650502565998"

// BaseTime is the instant every test clock starts at.
var BaseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		DiscordClientID:    "test-client-id",
		FounderDiscordID:   FounderID,
		PowerActionDelay:   5 * time.Millisecond,
		PowerActionTimeout: 500 * time.Millisecond,
		GrantPurgeInterval: time.Hour,
	}
}

// FakeIdentityProvider satisfies service.IdentityProvider without
// talking to Discord. Set Identity before hitting the callback.
type FakeIdentityProvider struct {
	Identity *discord.Identity
	Err      error
}

func (f *FakeIdentityProvider) AuthorizeURL(state string) string {
	return "https://discord.example.com/oauth2/authorize?state=" + state
}

func (f *FakeIdentityProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "fake-access-token-" + code, nil
}

func (f *FakeIdentityProvider) FetchUser(_ context.Context, _ string) (*discord.Identity, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Identity, nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Clock    *service.FixedClock
	Provider *FakeIdentityProvider
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer wires the full application against an empty in-memory
// store with a pinned clock and a fake identity provider.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	clock := &service.FixedClock{Time: BaseTime}
	provider := &FakeIdentityProvider{}

	hub := websocket.NewHub()
	go hub.Run()

	pol := policy.New(cfg.FounderDiscordID)
	services := service.NewServices(repos, pol, provider, clock, hub, cfg)

	server := httptest.NewServer(api.NewRouter(services, hub))

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Clock:    clock,
		Provider: provider,
		Hub:      hub,
		Config:   cfg,
	}
}
