package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saunderscox/taskolotl/pkg/auth"
	"github.com/saunderscox/taskolotl/pkg/pg"
)

// UserStore is the PostgreSQL implementation of auth.UserStore. Uniqueness
// of oauth_id and email is enforced by the schema's unique indexes; the
// store translates violations into auth.ErrIdentityConflict so the resolver
// can recover from the first-login race.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a user store backed by the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, email, username, oauth_provider, oauth_id, permission, profile_picture_url, created_at, updated_at`

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) GetByOAuthID(ctx context.Context, oauthID string) (*auth.User, error) {
	return s.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE oauth_id = $1`, oauthID)
}

// GetByEmail looks up a user by email, case-insensitively. Emails are stored
// lowercased, so a lowercased comparison suffices without an expression index.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email)
}

func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, username, oauth_provider, oauth_id, permission, profile_picture_url)
		VALUES ($1, LOWER($2), $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING created_at, updated_at`,
		user.ID, user.Email, user.Username, user.OAuthProvider, user.OAuthID,
		string(user.Permission), user.ProfilePictureURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrIdentityConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *auth.User) error {
	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $2, oauth_provider = NULLIF($3, ''), oauth_id = NULLIF($4, ''),
		    profile_picture_url = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		user.ID, user.Username, user.OAuthProvider, user.OAuthID, user.ProfilePictureURL,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return auth.ErrUserNotFound
		}
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrIdentityConflict
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserStore) getBy(ctx context.Context, query string, arg any) (*auth.User, error) {
	var (
		user       auth.User
		provider   *string
		oauthID    *string
		permission string
		avatar     *string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &provider, &oauthID,
		&permission, &avatar, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if provider != nil {
		user.OAuthProvider = *provider
	}
	if oauthID != nil {
		user.OAuthID = *oauthID
	}
	if avatar != nil {
		user.ProfilePictureURL = *avatar
	}
	user.Permission = auth.Permission(permission)
	return &user, nil
}

var _ auth.UserStore = (*UserStore)(nil)
