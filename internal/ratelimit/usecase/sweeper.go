package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically purges rate windows that have not been touched for ttl.
type Sweeper struct {
	store    Store
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper. ttl is independent of any policy window.
func NewSweeper(store Store, ttl, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps on every tick until ctx is cancelled. It never returns a non-nil error
// so that a failing sweep cannot take the server down.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.Sweep(ctx, s.now().Add(-s.ttl))
	if err != nil {
		s.logger.Warn("rate limit sweep failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Debug("rate limit sweep", slog.Int("removed", removed))
	}
}
