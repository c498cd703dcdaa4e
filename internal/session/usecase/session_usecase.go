package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	sessionDomain "github.com/healo/piiguard/internal/session/domain"
)

type sessionUseCase struct {
	store  Store
	policy sessionDomain.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionUseCase creates a SessionUseCase applying policy.
func NewSessionUseCase(store Store, policy sessionDomain.Policy, logger *slog.Logger) SessionUseCase {
	return &sessionUseCase{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Advance implements SessionUseCase.
func (s *sessionUseCase) Advance(ctx context.Context, info identityDomain.SessionInfo) (*Result, error) {
	now := s.now().UTC()

	stored, err := s.store.Get(ctx, info.Key())
	if err != nil {
		s.logger.Warn("session metadata unavailable", slog.Any("error", err))
		stored = nil
	}

	meta := stored
	// A later sign-in on the same key is a new login.
	if meta == nil || info.AuthenticatedAt.After(meta.LoginTime) {
		meta = sessionDomain.StartMeta(info.AuthenticatedAt, now)
	}

	if s.policy.Evaluate(meta, now) == sessionDomain.StateExpired {
		return &Result{State: sessionDomain.StateExpired, Meta: meta}, nil
	}
	return &Result{State: sessionDomain.StateActive, Meta: meta.Touch(now)}, nil
}

// Save implements SessionUseCase.
func (s *sessionUseCase) Save(ctx context.Context, info identityDomain.SessionInfo, meta *sessionDomain.Meta) error {
	if err := s.store.Put(ctx, info.Key(), meta, s.policy.Absolute); err != nil {
		return fmt.Errorf("failed to save session metadata: %w", err)
	}
	return nil
}
