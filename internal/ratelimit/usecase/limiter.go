package usecase

import (
	"context"
	"log/slog"
	"time"

	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

// Limiter is a fixed-window counter keyed by (API name, caller ID).
// Once the window has elapsed the counter resets rather than slides.
type Limiter struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a Limiter backed by store.
func NewLimiter(store Store, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Check counts one request for callerID under policy.
// It fails open when callerID is empty or the store is unavailable.
func (l *Limiter) Check(
	ctx context.Context,
	callerID string,
	policy ratelimitDomain.Policy,
) ratelimitDomain.Decision {
	now := l.now()

	if callerID == "" {
		l.logger.Debug("rate limit skipped: caller identifier unavailable",
			slog.String("api", policy.APIName))
		return allowAll(policy, now)
	}

	w, err := l.store.Incr(ctx, policy.Key(callerID), policy.Window, now)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			slog.String("api", policy.APIName),
			slog.Any("error", err))
		return allowAll(policy, now)
	}

	remaining := policy.MaxRequests - w.Count
	if remaining < 0 {
		remaining = 0
	}

	return ratelimitDomain.Decision{
		Allowed:   w.Count <= policy.MaxRequests,
		Remaining: remaining,
		ResetAt:   w.WindowStart.Add(policy.Window),
	}
}

func allowAll(policy ratelimitDomain.Policy, now time.Time) ratelimitDomain.Decision {
	return ratelimitDomain.Decision{
		Allowed:   true,
		Remaining: policy.MaxRequests,
		ResetAt:   now.Add(policy.Window),
	}
}
