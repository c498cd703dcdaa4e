package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Route surfaces used as the "surface" label.
const (
	SurfaceAdmin     = "admin"
	SurfacePublic    = "public"
	SurfaceOps       = "ops"
	SurfaceUnmatched = "unmatched"
)

type httpInstruments struct {
	requests   metric.Int64Counter
	durations  metric.Float64Histogram
	rejections metric.Int64Counter
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	requests, err := meter.Int64Counter(
		namespace+"_http_requests_total",
		metric.WithDescription("HTTP requests by route, surface and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durations, err := meter.Float64Histogram(
		namespace+"_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		namespace+"_http_rejections_total",
		metric.WithDescription("Requests refused for expired sessions, failed authorization or rate limits"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{requests: requests, durations: durations, rejections: rejections}, nil
}

// HTTPMetricsMiddleware records request counts and durations labelled by route pattern,
// never the raw path, so inquiry ids do not become label values. Responses with status
// 401, 403 or 429 also count as rejections of their surface.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	instruments, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", sanitizePath(route)),
			attribute.String("surface", surfaceOf(route)),
			attribute.String("status_code", strconv.Itoa(status)),
		)
		instruments.requests.Add(ctx, 1, attrs)
		instruments.durations.Record(ctx, time.Since(start).Seconds(), attrs)

		if isRejection(status) {
			instruments.rejections.Add(ctx, 1, metric.WithAttributes(
				attribute.String("surface", surfaceOf(route)),
				attribute.String("status_code", strconv.Itoa(status)),
			))
		}
	}
}

// sanitizePath returns the route pattern, or "unknown" when no route matched.
func sanitizePath(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}

func surfaceOf(route string) string {
	switch {
	case route == "":
		return SurfaceUnmatched
	case strings.HasPrefix(route, "/v1/admin"):
		return SurfaceAdmin
	case strings.HasPrefix(route, "/v1/public"):
		return SurfacePublic
	default:
		return SurfaceOps
	}
}

func isRejection(status int) bool {
	return status == http.StatusUnauthorized ||
		status == http.StatusForbidden ||
		status == http.StatusTooManyRequests
}
