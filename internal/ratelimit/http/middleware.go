// Package http provides the Gin rate limiting middleware for public endpoints.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healo/piiguard/internal/httputil"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
)

// RateLimitMiddleware enforces policy per client IP.
//
// Returns:
//   - 429 Too Many Requests with a Retry-After header when the window is exhausted
//   - Continues: request allowed, or the caller could not be identified
func RateLimitMiddleware(
	limiter ratelimitUseCase.RateLimiter,
	policy ratelimitDomain.Policy,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Check(c.Request.Context(), c.ClientIP(), policy)
		if !decision.Allowed {
			retryAfter := httputil.RetryAfterSeconds(decision.ResetAt, time.Now())

			logger.Debug("rate limit exceeded",
				slog.String("api", policy.APIName),
				slog.Int("retry_after", retryAfter))

			httputil.AbortRateLimited(c, retryAfter)
			return
		}

		c.Next()
	}
}
