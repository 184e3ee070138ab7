package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/saunderscox/taskolotl/pkg/jwt"
)

// Refresher exchanges a valid refresh token for a fresh token pair.
type Refresher struct {
	codec  *jwt.Service
	issuer *Issuer
	store  UserStore
}

// NewRefresher creates a refresh exchanger.
func NewRefresher(codec *jwt.Service, issuer *Issuer, store UserStore) *Refresher {
	return &Refresher{codec: codec, issuer: issuer, store: store}
}

// Refresh validates a refresh token and mints a new pair (token rotation;
// the old refresh token stays valid until it expires since there is no
// server-side token store). Every failure mode collapses into
// ErrInvalidCredential: unlike the request verifier, a failed refresh has no
// safe silent fallback, so the caller always sees it.
func (x *Refresher) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := x.codec.Decode(refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %s", ErrInvalidCredential, err)
	}

	// An access token must not be able to "refresh" itself.
	if claims.TokenType != jwt.TokenTypeRefresh {
		return TokenPair{}, fmt.Errorf("%w: token type mismatch", ErrInvalidCredential)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: malformed subject", ErrInvalidCredential)
	}

	user, err := x.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// User deleted since the token was issued.
			return TokenPair{}, fmt.Errorf("%w: unknown subject", ErrInvalidCredential)
		}
		return TokenPair{}, fmt.Errorf("failed to load user for refresh: %w", err)
	}

	return x.issuer.IssuePair(user)
}
