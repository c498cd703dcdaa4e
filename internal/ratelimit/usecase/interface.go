// Package usecase implements the fixed-window rate limiter and its TTL sweeper.
package usecase

import (
	"context"
	"time"

	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

// Store holds rate windows. Incr must be atomic per key: two concurrent calls
// for the same key never observe the same count.
type Store interface {
	// Incr counts one request for key at now, starting a new window when the
	// current one is older than window, and returns the updated state.
	Incr(ctx context.Context, key string, window time.Duration, now time.Time) (*ratelimitDomain.Window, error)

	// Sweep removes windows last seen before cutoff and returns how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// RateLimiter decides whether a caller may proceed.
type RateLimiter interface {
	Check(ctx context.Context, callerID string, policy ratelimitDomain.Policy) ratelimitDomain.Decision
}
