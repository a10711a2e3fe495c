package domain

import "time"

// Role is the access level of a dashboard user
type Role string

const (
	RoleClient  Role = "client"
	RoleAdmin   Role = "admin"
	RoleFounder Role = "founder"
)

// AllRoles contains all valid roles in ascending privilege order
var AllRoles = []Role{RoleClient, RoleAdmin, RoleFounder}

// IsValid checks if a role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleFounder:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a user-friendly display name for the role
func (r Role) DisplayName() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleAdmin:
		return "Admin"
	case RoleFounder:
		return "Founder"
	default:
		return string(r)
	}
}

type User struct {
	ID        string    `json:"id"` // Discord snowflake
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatarUrl"`
	Role      Role      `json:"role"`
	VMAccess  GrantSet  `json:"vmAccess,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate and write back whole
// records without aliasing the stored grant set.
func (u *User) Clone() *User {
	cp := *u
	cp.VMAccess = u.VMAccess.Clone()
	return &cp
}

type UserSession struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expiresAt"`
	CreatedAt        time.Time `json:"createdAt"`
}
