package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func googleProfile() Profile {
	return Profile{
		Provider:       "google",
		ProviderUserID: "sub-1234567890",
		Email:          "Alice@Example.COM",
		EmailVerified:  true,
		Name:           "Alice",
		AvatarURL:      "https://lh3.example/photo.jpg",
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("creates account on first login", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		resolver := NewResolver(store)

		user, err := resolver.Resolve(context.Background(), googleProfile())
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice", user.Username)
		assert.Equal(t, "google", user.OAuthProvider)
		assert.Equal(t, "sub-1234567890", user.OAuthID)
		assert.Equal(t, PermissionUser, user.Permission)
		assert.Equal(t, 1, store.count())
	})

	t.Run("repeated login is idempotent", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		resolver := NewResolver(store)

		first, err := resolver.Resolve(context.Background(), googleProfile())
		require.NoError(t, err)

		second, err := resolver.Resolve(context.Background(), googleProfile())
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, store.count())
	})

	t.Run("picks up changed profile fields", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		resolver := NewResolver(store)

		first, err := resolver.Resolve(context.Background(), googleProfile())
		require.NoError(t, err)

		updated := googleProfile()
		updated.Name = "Alice Cooper"
		updated.AvatarURL = "https://lh3.example/new.jpg"

		second, err := resolver.Resolve(context.Background(), updated)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Alice Cooper", second.Username)
		assert.Equal(t, "https://lh3.example/new.jpg", second.ProfilePictureURL)

		stored, err := store.GetByID(context.Background(), first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Cooper", stored.Username)
	})

	t.Run("links provider to account found by email", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		existing := &User{
			ID:         uuid.New(),
			Email:      "alice@example.com",
			Username:   "alice",
			Permission: PermissionModerator,
		}
		require.NoError(t, store.Create(context.Background(), existing))

		resolver := NewResolver(store)
		user, err := resolver.Resolve(context.Background(), googleProfile())
		require.NoError(t, err)

		assert.Equal(t, existing.ID, user.ID, "must attach to the existing account, not create a duplicate")
		assert.Equal(t, "google", user.OAuthProvider)
		assert.Equal(t, "sub-1234567890", user.OAuthID)
		assert.Equal(t, PermissionModerator, user.Permission, "linking must not touch the permission")
		assert.Equal(t, "alice", user.Username, "an existing username is kept")
		assert.Equal(t, 1, store.count())
	})

	t.Run("re-links a new provider id onto an already linked account", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		resolver := NewResolver(store)

		first, err := resolver.Resolve(context.Background(), googleProfile())
		require.NoError(t, err)
		require.Equal(t, "sub-1234567890", first.OAuthID)

		relinked := googleProfile()
		relinked.ProviderUserID = "sub-0987654321"

		second, err := resolver.Resolve(context.Background(), relinked)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "the email match must reuse the account")
		assert.Equal(t, "sub-0987654321", second.OAuthID, "the new provider subject replaces the old one")
		assert.Equal(t, 1, store.count())

		stored, err := store.GetByOAuthID(context.Background(), "sub-0987654321")
		require.NoError(t, err)
		assert.Equal(t, first.ID, stored.ID)
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		existing := &User{ID: uuid.New(), Email: "alice@example.com", Permission: PermissionUser}
		require.NoError(t, store.Create(context.Background(), existing))

		profile := googleProfile()
		profile.Email = "ALICE@EXAMPLE.COM"

		user, err := NewResolver(store).Resolve(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
	})

	t.Run("retries once after losing a create race", func(t *testing.T) {
		t.Parallel()

		winner := &User{
			ID:                uuid.New(),
			Email:             "alice@example.com",
			Username:          "Alice",
			OAuthProvider:     "google",
			OAuthID:           "sub-1234567890",
			Permission:        PermissionUser,
			ProfilePictureURL: "https://lh3.example/photo.jpg",
		}

		store := new(MockUserStore)
		// First pass: both lookups miss, the insert collides.
		store.On("GetByOAuthID", mock.Anything, "sub-1234567890").Return(nil, ErrUserNotFound).Once()
		store.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, ErrUserNotFound).Once()
		store.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(ErrIdentityConflict).Once()
		// Retry: the winning insert is now visible.
		store.On("GetByOAuthID", mock.Anything, "sub-1234567890").Return(winner, nil).Once()

		user, err := NewResolver(store).Resolve(context.Background(), googleProfile())
		require.NoError(t, err)
		assert.Equal(t, winner.ID, user.ID)
		store.AssertExpectations(t)
	})

	t.Run("conflict on retry surfaces the error", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("GetByOAuthID", mock.Anything, mock.Anything).Return(nil, ErrUserNotFound)
		store.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, ErrUserNotFound)
		store.On("Create", mock.Anything, mock.Anything).Return(ErrIdentityConflict)

		_, err := NewResolver(store).Resolve(context.Background(), googleProfile())
		require.ErrorIs(t, err, ErrIdentityConflict)
		store.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("storage failure is not swallowed", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("connection reset")
		store := new(MockUserStore)
		store.On("GetByOAuthID", mock.Anything, mock.Anything).Return(nil, storeErr)

		_, err := NewResolver(store).Resolve(context.Background(), googleProfile())
		require.ErrorIs(t, err, storeErr)
	})

	t.Run("concurrent first logins converge on one account", func(t *testing.T) {
		t.Parallel()

		store := newMemUserStore()
		resolver := NewResolver(store)

		const logins = 8
		ids := make([]uuid.UUID, logins)
		errs := make([]error, logins)

		var wg sync.WaitGroup
		for i := range logins {
			wg.Add(1)
			go func() {
				defer wg.Done()
				user, err := resolver.Resolve(context.Background(), googleProfile())
				errs[i] = err
				if err == nil {
					ids[i] = user.ID
				}
			}()
		}
		wg.Wait()

		for i := range logins {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}
		assert.Equal(t, 1, store.count())
	})
}
