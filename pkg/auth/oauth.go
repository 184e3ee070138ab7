package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ProviderAdapter abstracts a federated identity provider. Adapters exchange
// an authorization code for a normalized Profile without leaking
// provider-specific details into the login flow.
type ProviderAdapter interface {
	// ProviderID returns the provider tag stored on linked accounts, e.g. "google".
	ProviderID() string
	// AuthURL builds the provider authorization URL carrying the given state token.
	AuthURL(state string) string
	// ResolveProfile exchanges the authorization code for the user's profile.
	ResolveProfile(ctx context.Context, code string) (Profile, error)
}

// OAuthService drives the federated login flow: it issues CSRF state tokens,
// validates callbacks, and hands the provider profile to the Resolver.
type OAuthService struct {
	adapter      ProviderAdapter
	states       StateStore
	resolver     *Resolver
	logger       *slog.Logger
	stateTTL     time.Duration
	verifiedOnly bool
}

// OAuthOption configures an OAuthService during construction.
type OAuthOption func(*OAuthService)

// WithOAuthLogger configures the logger for the OAuth service.
func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(s *OAuthService) {
		s.logger = l
	}
}

// WithStateTTL configures the TTL for state tokens used in CSRF protection.
func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(s *OAuthService) {
		s.stateTTL = ttl
	}
}

// WithVerifiedOnly enforces that only verified provider emails are accepted.
func WithVerifiedOnly(verifiedOnly bool) OAuthOption {
	return func(s *OAuthService) {
		s.verifiedOnly = verifiedOnly
	}
}

// NewOAuthService constructs a provider-agnostic login flow.
// Defaults: verifiedOnly = true, stateTTL = 10 minutes, logger discards.
func NewOAuthService(adapter ProviderAdapter, states StateStore, resolver *Resolver, opts ...OAuthOption) *OAuthService {
	s := &OAuthService{
		adapter:      adapter,
		states:       states,
		resolver:     resolver,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL:     10 * time.Minute,
		verifiedOnly: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthURL generates an authorization URL with CSRF protection via the state
// parameter.
func (s *OAuthService) AuthURL(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := s.states.Store(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return s.adapter.AuthURL(state), nil
}

// Authenticate handles the provider callback: it consumes the state token
// (one-time use prevents replay), exchanges the code for a profile, and
// resolves the profile to a local user.
func (s *OAuthService) Authenticate(ctx context.Context, code, state string) (*User, error) {
	if err := s.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("failed to validate state: %w", err)
	}

	profile, err := s.adapter.ResolveProfile(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to resolve provider profile: %w", err)
	}

	if profile.ProviderUserID == "" || profile.Email == "" {
		return nil, ErrMissingProfile
	}

	// Reject unverified emails to prevent account takeover via the
	// email-linking step of the resolver.
	if s.verifiedOnly && !profile.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	profile.Provider = s.adapter.ProviderID()
	return s.resolver.Resolve(ctx, profile)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
