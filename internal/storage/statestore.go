package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saunderscox/taskolotl/pkg/auth"
)

const statePrefix = "oauth:state:"

// StateStore keeps one-time OAuth state tokens in Redis. TTL-based expiry
// matches the tokens' short lifetime and GETDEL makes consumption atomic, so
// concurrent callbacks cannot both pass state validation.
type StateStore struct {
	client *redis.Client
}

// NewStateStore creates a Redis-backed state store.
func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, statePrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

func (s *StateStore) Consume(ctx context.Context, state string) error {
	if err := s.client.GetDel(ctx, statePrefix+state).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.ErrStateNotFound
		}
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nil
}

var _ auth.StateStore = (*StateStore)(nil)
