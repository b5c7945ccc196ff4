// Package user defines the user repository consumed by the auth flow.
package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no user matches the lookup
var ErrNotFound = errors.New("user not found")

// User is an account record
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Value wraps a single string the way OAuth profile lists carry them
type Value struct {
	Value string `json:"value"`
}

// OAuthProfile is the canonical profile shape handed to the repository,
// independent of which provider produced it.
type OAuthProfile struct {
	Provider    string  `json:"provider"`
	DisplayName string  `json:"displayName"`
	Emails      []Value `json:"emails"`
	Photos      []Value `json:"photos"`
}

// Email returns the profile's primary email, or "" when absent
func (p OAuthProfile) Email() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0].Value
}

// Repository stores and retrieves users. Create-or-login operations are
// idempotent: the same email maps to the same user on repeat logins.
type Repository interface {
	CreateOrLoginWithOAuth(ctx context.Context, profile OAuthProfile) (User, error)
	CreateOrLoginWithDev(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
