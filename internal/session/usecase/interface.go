// Package usecase advances admin sessions through their lifecycle using server-side metadata.
package usecase

import (
	"context"
	"time"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	sessionDomain "github.com/healo/piiguard/internal/session/domain"
)

// Store holds session metadata keyed by provider session.
type Store interface {
	// Get returns the metadata stored under key, or nil when there is none.
	Get(ctx context.Context, key string) (*sessionDomain.Meta, error)

	// Put stores meta under key for ttl.
	Put(ctx context.Context, key string, meta *sessionDomain.Meta, ttl time.Duration) error
}

// Result is the outcome of advancing a session on a request.
type Result struct {
	State sessionDomain.State
	Meta  *sessionDomain.Meta
}

// SessionUseCase evaluates and refreshes admin sessions.
type SessionUseCase interface {
	// Advance evaluates the session described by info. Without stored metadata the
	// session is measured from the provider's authentication time, so losing the
	// record never extends the absolute limit. Nothing is persisted.
	Advance(ctx context.Context, info identityDomain.SessionInfo) (*Result, error)

	// Save persists meta for the session described by info.
	Save(ctx context.Context, info identityDomain.SessionInfo, meta *sessionDomain.Meta) error
}
