package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines the user persistence operations the identity components
// need. Implementations must return ErrUserNotFound for missing rows and
// ErrIdentityConflict for uniqueness violations on oauth_id or email, and
// must treat email lookups case-insensitively.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByOAuthID(ctx context.Context, oauthID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// StateStore holds one-time OAuth state tokens for CSRF protection.
type StateStore interface {
	// Store saves a state token that expires after ttl.
	Store(ctx context.Context, state string, ttl time.Duration) error
	// Consume atomically checks that the state exists and removes it.
	// Returns ErrStateNotFound if it does not exist or was already consumed.
	Consume(ctx context.Context, state string) error
}
