// Package redisstore provides a redis backed session storage implementation.
//
// Sharing one redis between several processes lets them share a shopper
// session. Keys may be namespaced with a prefix and given a TTL.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/redis/go-redis/v9"
)

var _ session.Storage = (*RedisStore)(nil)

// RedisStore is a redis backed key/value storage.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix namespaces every key with prefix.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL expires stored records after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// New creates a RedisStore on an existing client.
func New(rdb redis.UniversalClient, options ...Option) *RedisStore {
	s := &RedisStore{rdb: rdb}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Get retrieves the data stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("[RedisStore.Get] %w", err)
	}
	return data, true, nil
}

// Set stores data under key, overwriting any existing value.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("[RedisStore.Set] %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are a no-op.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("[RedisStore.Delete] %w", err)
	}
	return nil
}
