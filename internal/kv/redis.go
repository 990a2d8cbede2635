package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in Redis, for deployments where several instances
// of the backend must see the same collections. Values never expire; the
// stores own their data for the lifetime of the installation.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. prefix namespaces all keys (useful
// when one Redis serves several environments); pass "" for none.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key Key) string { return s.prefix + string(key) }

// Get returns the whole value for key; redis.Nil maps to "absent".
func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	buf, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return buf, true, nil
}

// Set overwrites the value for key without expiry.
func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Delete removes the value for key; absent keys are a no-op.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

var _ Store = (*RedisStore)(nil)
