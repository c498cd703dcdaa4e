package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	guardUseCase "github.com/healo/piiguard/internal/guard/usecase"
	"github.com/healo/piiguard/internal/httputil"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

// RequireAdmin runs the access guard for every request of an admin route group.
//
// Returns:
//   - 429 Too Many Requests with a Retry-After header when the admin rate limit is exhausted
//   - 403 Forbidden with a generic body when the caller is not an admin
//   - Continues: identity stored in the request context
func RequireAdmin(
	guard guardUseCase.Guard,
	policy ratelimitDomain.Policy,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := guard.Check(c.Request.Context(), guardRequest(c), policy)

		switch result.Outcome {
		case guardUseCase.OutcomeRateLimited:
			retryAfter := httputil.RetryAfterSeconds(result.RateLimit.ResetAt, time.Now())
			logger.Debug("admin rate limit exceeded",
				slog.String("api", policy.APIName),
				slog.Int("retry_after", retryAfter))
			httputil.AbortRateLimited(c, retryAfter)
			return
		case guardUseCase.OutcomeAllowed:
			ctx := WithIdentity(c.Request.Context(), result.Decision.Identity)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		default:
			httputil.AbortUnauthorized(c)
		}
	}
}

func guardRequest(c *gin.Context) guardUseCase.Request {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	return guardUseCase.Request{
		CallerID:    c.ClientIP(),
		IP:          c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		Path:        path,
		Method:      c.Request.Method,
		RequestID:   requestid.Get(c),
		Credentials: identityUseCase.CredentialsFromRequest(c.Request),
	}
}
