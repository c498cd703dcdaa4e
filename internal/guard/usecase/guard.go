package usecase

import (
	"context"
	"log/slog"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	"github.com/healo/piiguard/internal/metrics"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
)

type accessGuard struct {
	limiter  ratelimitUseCase.RateLimiter
	resolver identityUseCase.AdminResolver
	recorder auditUseCase.AuditRecorder
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
}

// NewGuard creates a Guard. Checks run in order: rate limit, then admin resolution.
// A denial is audited asynchronously; a successful check writes no audit entry.
func NewGuard(
	limiter ratelimitUseCase.RateLimiter,
	resolver identityUseCase.AdminResolver,
	recorder auditUseCase.AuditRecorder,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) Guard {
	return &accessGuard{
		limiter:  limiter,
		resolver: resolver,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
	}
}

// Check evaluates req against policy.
func (g *accessGuard) Check(ctx context.Context, req Request, policy ratelimitDomain.Policy) Result {
	rateDecision := g.limiter.Check(ctx, req.CallerID, policy)
	if !rateDecision.Allowed {
		return g.finish(ctx, Result{Outcome: OutcomeRateLimited, RateLimit: rateDecision})
	}

	decision := g.resolver.Resolve(ctx, req.Credentials)
	result := Result{RateLimit: rateDecision, Decision: decision}
	if !decision.IsAdmin {
		result.Outcome = OutcomeDenied
		g.recordDenial(ctx, req, result)
		return g.finish(ctx, result)
	}

	result.Outcome = OutcomeAllowed
	return g.finish(ctx, result)
}

func (g *accessGuard) recordDenial(ctx context.Context, req Request, result Result) {
	event := auditDomain.Event{
		Action:    auditDomain.ActionUnauthorizedAdminAccess,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Metadata: map[string]any{
			"reason":     string(result.Decision.Reason),
			"path":       req.Path,
			"method":     req.Method,
			"request_id": req.RequestID,
		},
	}
	if id := result.Decision.Identity; id != nil {
		event.ActorEmail = id.Email
		event.ActorUserID = id.UserID
		event.Metadata["auth_method"] = string(id.AuthMethod)
	}

	g.logger.Info("admin access denied",
		slog.String("reason", string(result.Decision.Reason)),
		slog.String("path", req.Path),
		slog.String("request_id", req.RequestID))

	g.recorder.RecordAsync(ctx, event)
}

// finish counts the outcome by decision reason. Rate-limited checks carry no reason.
func (g *accessGuard) finish(ctx context.Context, result Result) Result {
	g.metrics.RecordGuardDecision(ctx, string(result.Outcome), string(result.Decision.Reason))
	return result
}
