package auth

import "errors"

// General authentication errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrIdentityConflict signals a store uniqueness violation on oauth_id or
	// email. It occurs when two first logins for the same identity race; the
	// resolver retries once before letting it propagate.
	ErrIdentityConflict = errors.New("identity already exists")
)

// OAuth login flow errors
var (
	ErrInvalidState    = errors.New("oauth: invalid or expired state")
	ErrStateNotFound   = errors.New("oauth: state not found or already consumed")
	ErrInvalidCode     = errors.New("oauth: invalid authorization code")
	ErrUnverifiedEmail = errors.New("oauth: provider email is not verified")
	ErrMissingProfile  = errors.New("oauth: provider profile is missing id or email")
)
