package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"

	UserStatusActive = "active"
)

// User represents a stored account able to sign in.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Identity returns the authenticated view of the user.
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Identity is the currently authenticated principal.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// DisplayName prefers the e-mail, which is what the activity feed shows.
func (i *Identity) DisplayName() string {
	if i == nil {
		return AnonymousActorName
	}
	if i.Email != "" {
		return i.Email
	}
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

type identityKey struct{}

// ContextWithIdentity attaches the identity to ctx.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored in ctx, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
