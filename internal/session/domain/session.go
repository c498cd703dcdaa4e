// Package domain defines the admin session lifecycle: idle and absolute expiry
// over server-side metadata keyed by the provider session.
package domain

import (
	"time"

	apperrors "github.com/healo/piiguard/internal/errors"
)

const (
	// DefaultIdleTimeout expires sessions without activity for this long.
	DefaultIdleTimeout = 60 * time.Minute
	// DefaultAbsoluteTimeout expires sessions this long after login regardless of activity.
	DefaultAbsoluteTimeout = 7 * 24 * time.Hour
)

// ErrSessionExpired indicates the admin must sign in again.
var ErrSessionExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "session expired")

// State is the lifecycle state of an admin session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateActive          State = "active"
	StateExpired         State = "expired"
)

// Meta is the per-session activity record.
type Meta struct {
	LastActivity time.Time
	LoginTime    time.Time
}

// StartMeta starts tracking a session whose user signed in at login. A login time
// reported in the future is clamped to now.
func StartMeta(login, now time.Time) *Meta {
	if login.After(now) {
		login = now
	}
	return &Meta{LastActivity: now, LoginTime: login}
}

// Touch returns a copy with LastActivity moved to now. LoginTime never changes.
func (m Meta) Touch(now time.Time) *Meta {
	m.LastActivity = now
	return &m
}

// Policy holds the expiry limits.
type Policy struct {
	Idle     time.Duration
	Absolute time.Duration
}

// DefaultPolicy returns the default 60 minute idle and 7 day absolute limits.
func DefaultPolicy() Policy {
	return Policy{Idle: DefaultIdleTimeout, Absolute: DefaultAbsoluteTimeout}
}

// Evaluate returns the state of meta at now. A nil meta is unauthenticated. Limits are
// exclusive: a session idle for exactly Idle is still active.
func (p Policy) Evaluate(meta *Meta, now time.Time) State {
	if meta == nil {
		return StateUnauthenticated
	}
	if now.Sub(meta.LastActivity) > p.Idle {
		return StateExpired
	}
	if now.Sub(meta.LoginTime) > p.Absolute {
		return StateExpired
	}
	return StateActive
}
