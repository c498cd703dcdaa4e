// Package usecase composes rate limiting, admin resolution and denial auditing
// into the single check every admin route runs.
package usecase

import (
	"context"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

// Outcome is the result class of a guard check.
type Outcome string

const (
	OutcomeAllowed     Outcome = "allowed"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeDenied      Outcome = "denied"
)

// Request carries what the guard needs from an incoming request.
type Request struct {
	// CallerID keys the rate limit. Identity is unknown at that point, so it is the client IP.
	CallerID    string
	IP          string
	UserAgent   string
	Path        string
	Method      string
	RequestID   string
	Credentials identityUseCase.Credentials
}

// Result is the guard's verdict.
type Result struct {
	Outcome   Outcome
	RateLimit ratelimitDomain.Decision
	Decision  identityDomain.Decision
}

// Allowed reports whether the request may proceed.
func (r Result) Allowed() bool {
	return r.Outcome == OutcomeAllowed
}

// Guard protects admin routes.
type Guard interface {
	Check(ctx context.Context, req Request, policy ratelimitDomain.Policy) Result
}
