package auth

import (
	"fmt"
	"time"

	"github.com/saunderscox/taskolotl/pkg/jwt"
)

// BearerTokenType is the token_type value reported to clients per RFC 6750.
const BearerTokenType = "Bearer"

// TokenPair is the credential set handed to a client after login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime in seconds
}

// Issuer mints access/refresh token pairs for resolved user identities.
// It is a pure function of the user and the clock; all state lives in the
// codec's read-only signing key.
type Issuer struct {
	codec      *jwt.Service
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates an issuer with the configured token lifetimes.
func NewIssuer(codec *jwt.Service, cfg TokenConfig) *Issuer {
	return &Issuer{
		codec:      codec,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssueAccessToken mints a short-lived token carrying the identity claims
// downstream authorization reads (email, permission).
func (i *Issuer) IssueAccessToken(user *User) (string, error) {
	token, err := i.codec.Encode(jwt.Claims{
		Subject:    user.ID.String(),
		TokenType:  jwt.TokenTypeAccess,
		ExpiresAt:  time.Now().Add(i.accessTTL).Unix(),
		Email:      user.Email,
		Permission: string(user.Permission),
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken mints a long-lived token whose only job is minting the
// next pair. It deliberately carries no profile or permission claims since
// it is never used for authorization.
func (i *Issuer) IssueRefreshToken(user *User) (string, error) {
	token, err := i.codec.Encode(jwt.Claims{
		Subject:   user.ID.String(),
		TokenType: jwt.TokenTypeRefresh,
		ExpiresAt: time.Now().Add(i.refreshTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return token, nil
}

// IssuePair mints both tokens for a user.
func (i *Issuer) IssuePair(user *User) (TokenPair, error) {
	access, err := i.IssueAccessToken(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(user)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    BearerTokenType,
		ExpiresIn:    int64(i.accessTTL.Seconds()),
	}, nil
}
