package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock implementation of UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStore) GetByOAuthID(ctx context.Context, oauthID string) (*User, error) {
	args := m.Called(ctx, oauthID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) Update(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockStateStore is a mock implementation of StateStore.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	args := m.Called(ctx, state, ttl)
	return args.Error(0)
}

func (m *MockStateStore) Consume(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// stubAdapter is a hand-rolled ProviderAdapter returning canned values.
type stubAdapter struct {
	profile Profile
	err     error
}

func (a *stubAdapter) ProviderID() string { return "google" }

func (a *stubAdapter) AuthURL(state string) string {
	return "https://provider.example/auth?state=" + state
}

func (a *stubAdapter) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	if a.err != nil {
		return Profile{}, a.err
	}
	return a.profile, nil
}

// memUserStore is an in-memory UserStore that enforces the same uniqueness
// constraints as the schema. It lets scenario tests exercise the resolver
// against real store semantics, including the first-login race.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*User)}
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (s *memUserStore) GetByOAuthID(_ context.Context, oauthID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.OAuthID != "" && u.OAuthID == oauthID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == normalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memUserStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || (user.OAuthID != "" && u.OAuthID == user.OAuthID) {
			return ErrIdentityConflict
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && user.OAuthID != "" && u.OAuthID == user.OAuthID {
			return ErrIdentityConflict
		}
	}
	user.UpdatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// memStateStore is an in-memory StateStore for flow tests.
type memStateStore struct {
	mu     sync.Mutex
	states map[string]struct{}
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]struct{})}
}

func (s *memStateStore) Store(_ context.Context, state string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = struct{}{}
	return nil
}

func (s *memStateStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[state]; !ok {
		return ErrStateNotFound
	}
	delete(s.states, state)
	return nil
}
