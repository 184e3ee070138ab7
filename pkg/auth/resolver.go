package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saunderscox/taskolotl/pkg/logger"
)

// Resolver maps a federated provider profile onto a local user account,
// creating or linking accounts as needed.
type Resolver struct {
	store  UserStore
	logger *slog.Logger
}

// ResolverOption configures a Resolver during construction.
type ResolverOption func(*Resolver)

// WithResolverLogger sets a custom logger for the resolver.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver backed by the given user store.
func NewResolver(store UserStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds or creates the local account for a provider profile:
//
//  1. By provider subject ID - an earlier federated login; mutable profile
//     fields are overwritten idempotently.
//  2. By email (case-insensitive) - an account that predates this provider;
//     the provider identity is attached so no duplicate is created.
//  3. Otherwise a new account is created with the least-privileged role.
//
// Two concurrent first logins for the same identity can both reach step 3;
// the store's uniqueness constraint rejects one with ErrIdentityConflict.
// The losing call retries the whole sequence once - by then the winning
// insert has committed, so the retry resolves at step 1 or 2.
func (r *Resolver) Resolve(ctx context.Context, profile Profile) (*User, error) {
	profile.Email = normalizeEmail(profile.Email)

	user, err := r.resolve(ctx, profile)
	if errors.Is(err, ErrIdentityConflict) {
		r.logger.InfoContext(ctx, "identity conflict on first login, retrying",
			slog.String("provider", profile.Provider),
			logger.Component("resolver"),
		)
		user, err = r.resolve(ctx, profile)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) resolve(ctx context.Context, profile Profile) (*User, error) {
	user, err := r.store.GetByOAuthID(ctx, profile.ProviderUserID)
	if err == nil {
		return r.refreshProfile(ctx, user, profile)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by oauth id: %w", err)
	}

	user, err = r.store.GetByEmail(ctx, profile.Email)
	if err == nil {
		return r.linkProvider(ctx, user, profile)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	return r.create(ctx, profile)
}

// refreshProfile overwrites the mutable profile fields when the provider
// reports new values. The write is skipped when nothing changed, so repeated
// logins are idempotent.
func (r *Resolver) refreshProfile(ctx context.Context, user *User, profile Profile) (*User, error) {
	changed := false
	if profile.AvatarURL != "" && profile.AvatarURL != user.ProfilePictureURL {
		user.ProfilePictureURL = profile.AvatarURL
		changed = true
	}
	if profile.Name != "" && profile.Name != user.Username {
		user.Username = profile.Name
		changed = true
	}
	if !changed {
		return user, nil
	}

	if err := r.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to refresh user profile: %w", err)
	}
	return user, nil
}

// linkProvider attaches the federated identity to an account that was found
// by email. This lets a user who registered earlier log in via the provider
// without creating a duplicate account.
func (r *Resolver) linkProvider(ctx context.Context, user *User, profile Profile) (*User, error) {
	user.OAuthID = profile.ProviderUserID
	user.OAuthProvider = profile.Provider
	if profile.AvatarURL != "" {
		user.ProfilePictureURL = profile.AvatarURL
	}
	if user.Username == "" {
		user.Username = profile.Name
	}

	if err := r.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to link provider identity: %w", err)
	}

	r.logger.InfoContext(ctx, "linked provider identity to existing account",
		logger.UserID(user.ID.String()),
		slog.String("provider", profile.Provider),
		logger.Component("resolver"),
	)
	return user, nil
}

func (r *Resolver) create(ctx context.Context, profile Profile) (*User, error) {
	user := &User{
		ID:                uuid.New(),
		Email:             profile.Email,
		Username:          profile.Name,
		OAuthProvider:     profile.Provider,
		OAuthID:           profile.ProviderUserID,
		Permission:        PermissionUser,
		ProfilePictureURL: profile.AvatarURL,
	}

	if err := r.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrIdentityConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.InfoContext(ctx, "created user from federated login",
		logger.UserID(user.ID.String()),
		slog.String("provider", profile.Provider),
		logger.Component("resolver"),
	)
	return user, nil
}
