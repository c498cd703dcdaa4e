package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	sessionDomain "github.com/healo/piiguard/internal/session/domain"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "piiguard:session:"

const defaultRedisTimeout = 2 * time.Second

// storedMeta is the Redis value, in unix milliseconds.
type storedMeta struct {
	LastActivity int64 `json:"la"`
	LoginTime    int64 `json:"lt"`
}

// RedisStore keeps session metadata in Redis so every instance sees the same activity.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a RedisStore using the default key prefix.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  DefaultRedisPrefix,
		timeout: defaultRedisTimeout,
	}
}

// Get returns the metadata stored under key, or nil when there is none.
func (s *RedisStore) Get(ctx context.Context, key string) (*sessionDomain.Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session metadata: %w", err)
	}

	var stored storedMeta
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session metadata: %w", err)
	}
	return &sessionDomain.Meta{
		LastActivity: time.UnixMilli(stored.LastActivity).UTC(),
		LoginTime:    time.UnixMilli(stored.LoginTime).UTC(),
	}, nil
}

// Put stores meta under key for ttl.
func (s *RedisStore) Put(ctx context.Context, key string, meta *sessionDomain.Meta, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(storedMeta{
		LastActivity: meta.LastActivity.UnixMilli(),
		LoginTime:    meta.LoginTime.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session metadata: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session metadata: %w", err)
	}
	return nil
}
