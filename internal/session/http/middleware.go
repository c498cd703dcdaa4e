package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	guardHTTP "github.com/healo/piiguard/internal/guard/http"
	"github.com/healo/piiguard/internal/httputil"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
	sessionDomain "github.com/healo/piiguard/internal/session/domain"
	sessionUseCase "github.com/healo/piiguard/internal/session/usecase"
)

// SessionPolicy bundles what SessionPolicyMiddleware needs besides the session use case.
type SessionPolicy struct {
	Provider ProviderSession
	Recorder auditUseCase.AuditRecorder
	Limiter  ratelimitUseCase.RateLimiter
	// RateLimit is charged for every expired-session response, so rejected
	// requests cannot write audit entries faster than admitted ones.
	RateLimit ratelimitDomain.Policy
	Cookie    CookieConfig
	Enforced  bool
}

// SessionPolicyMiddleware enforces idle and absolute expiry on cookie-based admin sessions.
// It runs before the access guard. Session metadata is saved only after the guard admits
// the request, so unverified tokens never create records.
//
// Returns:
//   - 429 Too Many Requests when an expired session exceeds the admin rate limit
//   - 401 Unauthorized with error "session_expired" when the session expired; cookies are cleared
//   - Continues: policy bypassed, bearer request, no readable provider session, or active session
func SessionPolicyMiddleware(
	sessions sessionUseCase.SessionUseCase,
	policy SessionPolicy,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Enforced || identityUseCase.ParseBearerToken(c.GetHeader("Authorization")) != "" {
			c.Next()
			return
		}

		cookies := c.Request.Cookies()
		if !policy.Provider.HasSession(cookies) {
			c.Next()
			return
		}

		info, err := policy.Provider.SessionInfo(cookies)
		if err != nil {
			// The guard rejects what cannot be read here.
			logger.Debug("session info unavailable", slog.Any("error", err))
			c.Next()
			return
		}

		result, err := sessions.Advance(c.Request.Context(), *info)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if result.State == sessionDomain.StateExpired {
			decision := policy.Limiter.Check(c.Request.Context(), c.ClientIP(), policy.RateLimit)
			if !decision.Allowed {
				httputil.AbortRateLimited(c, httputil.RetryAfterSeconds(decision.ResetAt, time.Now()))
				return
			}

			clearSession(c, policy.Cookie, policy.Provider)
			policy.Recorder.RecordAsync(c.Request.Context(), auditDomain.Event{
				Action:    auditDomain.ActionAdminSessionExpired,
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				Metadata: map[string]any{
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"request_id": requestid.Get(c),
				},
			})
			logger.Info("admin session expired", slog.String("request_id", requestid.Get(c)))
			httputil.AbortSessionExpired(c)
			return
		}

		c.Next()

		identity, ok := guardHTTP.GetIdentity(c.Request.Context())
		if !ok || identity.UserID != info.UserID {
			return
		}
		if err := sessions.Save(c.Request.Context(), *info, result.Meta); err != nil {
			logger.Warn("failed to save admin session", slog.Any("error", err))
		}
	}
}
