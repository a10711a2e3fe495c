package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/caio/vmfleet/internal/discord"
	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/repository"
	"github.com/google/uuid"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	id       string
	username string
	role     domain.Role
	grants   domain.GrantSet
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		id:       "user-" + suffix,
		username: "testuser_" + suffix,
		role:     domain.RoleClient,
	}
}

// WithID sets the user id
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.id = id
	return b
}

// WithUsername sets the display name
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.username = name
	return b
}

// WithRole sets the role
func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

// WithGrant adds a VM access grant
func (b *UserBuilder) WithGrant(vmID string, expiresAt time.Time) *UserBuilder {
	b.grants.Grant(vmID, expiresAt)
	return b
}

// Build creates the user in the repository
func (b *UserBuilder) Build(t *testing.T, repos *repository.Repositories) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        b.id,
		Username:  b.username,
		Email:     b.username + "@example.com",
		AvatarURL: "https://cdn.discordapp.com/embed/avatars/0.png",
		Role:      b.role,
		VMAccess:  b.grants,
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
	}

	if err := repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// VMBuilder creates test virtual machines
type VMBuilder struct {
	id     string
	name   string
	status domain.VMStatus
	owner  string
}

// NewVMBuilder creates a new VMBuilder with default values
func NewVMBuilder() *VMBuilder {
	suffix := uuid.New().String()[:8]
	return &VMBuilder{
		id:     "vm-" + suffix,
		name:   "Test VM " + suffix,
		status: domain.VMStatusRunning,
	}
}

// WithID sets the VM id
func (b *VMBuilder) WithID(id string) *VMBuilder {
	b.id = id
	return b
}

// WithStatus sets the power status
func (b *VMBuilder) WithStatus(status domain.VMStatus) *VMBuilder {
	b.status = status
	return b
}

// WithOwner sets the informational owner id
func (b *VMBuilder) WithOwner(ownerID string) *VMBuilder {
	b.owner = ownerID
	return b
}

// Build creates the VM in the repository
func (b *VMBuilder) Build(t *testing.T, repos *repository.Repositories) *domain.VirtualMachine {
	t.Helper()

	vm := &domain.VirtualMachine{
		ID:       b.id,
		Name:     b.name,
		Status:   b.status,
		IP:       "10.0.0.1",
		Type:     "Standard_B2s",
		Location: "Brazil South",
		OwnerID:  b.owner,
	}

	if err := repos.VM.Create(context.Background(), vm); err != nil {
		t.Fatalf("failed to create vm: %v", err)
	}

	return vm
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates an existing user through the OAuth callback
// endpoint and returns the access token. The fake provider is pointed
// at the user's identity first; existing accounts keep their role.
func (ts *TestServer) Login(t *testing.T, user *domain.User) string {
	t.Helper()

	ts.Provider.Identity = &discord.Identity{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}

	body, _ := json.Marshal(map[string]string{"code": "test-code"})
	resp, err := http.Post(ts.Server.URL+"/api/v1/auth/discord/callback", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to call auth callback: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auth callback returned status %d", resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}
	return auth.AccessToken
}

// DoJSON issues an authenticated JSON request against the test server.
func (ts *TestServer) DoJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
