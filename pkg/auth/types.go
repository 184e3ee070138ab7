package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Permission is the role attached to a user and carried as a token claim.
type Permission string

const (
	PermissionUser      Permission = "USER"
	PermissionModerator Permission = "MODERATOR"
	PermissionAdmin     Permission = "ADMIN"
)

// User is a local user account. At most one account exists per OAuthID and
// per email (case-insensitive); both constraints are enforced by the store.
type User struct {
	ID                uuid.UUID
	Email             string // stored lowercased
	Username          string
	OAuthProvider     string
	OAuthID           string // provider subject; empty until a federated login links it
	Permission        Permission
	ProfilePictureURL string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Profile is the normalized identity a federated provider reports after a
// successful login.
type Profile struct {
	Provider       string
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// normalizeEmail lowercases and trims an email address so that lookups and
// the store's uniqueness constraint agree on case-insensitivity.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
