// Package redis provides a Store backed by Redis, so the outgoing queue and
// the session id survive client reloads.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a persisted snapshot outlives the session that
// wrote it. Snapshots are recovery state, not archival storage.
const DefaultTTL = 24 * time.Hour

// StoreOption configures the store.
type StoreOption func(*Store)

// WithTTL sets the expiry applied to every written key.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces all keys, e.g. per app id.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) { s.prefix = prefix }
}

// Store persists beacon state in Redis.
type Store struct {
	client goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

// New wraps an existing Redis client.
func New(client goredis.UniversalClient, opts ...StoreOption) *Store {
	s := &Store{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key, and whether the key was present.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Set writes the value for key with the configured TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
