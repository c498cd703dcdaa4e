package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

// DefaultRedisPrefix namespaces rate limit keys.
const DefaultRedisPrefix = "piiguard:ratelimit:"

const defaultRedisTimeout = 2 * time.Second

// incrScript increments the counter and arms its expiry on the first hit of a
// window, returning the count and the remaining TTL in milliseconds.
var incrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisStore keeps rate windows in Redis so every instance shares one counter per key.
// Windows expire on their own, so Sweep is a no-op.
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

// Incr runs the increment script atomically on the server.
func (s *RedisStore) Incr(
	ctx context.Context,
	key string,
	window time.Duration,
	now time.Time,
) (*ratelimitDomain.Window, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vals, err := incrScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate window: %w", err)
	}
	if len(vals) < 2 {
		return nil, fmt.Errorf("unexpected rate window script result: %v", vals)
	}

	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}

	return &ratelimitDomain.Window{
		Key:         key,
		Count:       int(vals[0]),
		WindowStart: now.Add(ttl - window),
		LastSeen:    now,
	}, nil
}

// Sweep is a no-op: Redis expires windows itself.
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
