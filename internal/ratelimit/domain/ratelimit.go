// Package domain defines the fixed-window rate limiting model.
package domain

import (
	"time"

	apperrors "github.com/healo/piiguard/internal/errors"
)

// ErrRateLimited is returned when a caller exceeded its window.
var ErrRateLimited = apperrors.Wrap(apperrors.ErrTooManyRequests, "rate limited")

// Policy is the ceiling applied to one API.
type Policy struct {
	APIName     string
	Window      time.Duration
	MaxRequests int
}

// Key identifies the counter for a caller of an API.
func (p Policy) Key(callerID string) string {
	return p.APIName + ":" + callerID
}

// Window is the counter state for one (API, caller) pair.
// Count resets when now - WindowStart exceeds the policy window.
type Window struct {
	Key         string
	Count       int
	WindowStart time.Time
	LastSeen    time.Time
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}
