// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/healo/piiguard/internal/audit/http"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	"github.com/healo/piiguard/internal/config"
	guardHTTP "github.com/healo/piiguard/internal/guard/http"
	guardUseCase "github.com/healo/piiguard/internal/guard/usecase"
	inquiryHTTP "github.com/healo/piiguard/internal/inquiry/http"
	"github.com/healo/piiguard/internal/metrics"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	ratelimitHTTP "github.com/healo/piiguard/internal/ratelimit/http"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
	sessionHTTP "github.com/healo/piiguard/internal/session/http"
	sessionUseCase "github.com/healo/piiguard/internal/session/usecase"
)

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// RouterDeps holds the collaborators mounted by SetupRouter.
type RouterDeps struct {
	Limiter  ratelimitUseCase.RateLimiter
	Guard    guardUseCase.Guard
	Sessions sessionUseCase.SessionUseCase
	Provider sessionHTTP.ProviderSession

	InquiryHandler  *inquiryHTTP.InquiryHandler
	AuditLogHandler *auditHTTP.AuditLogHandler
	LogoutHandler   *sessionHTTP.LogoutHandler

	Recorder auditUseCase.AuditRecorder

	AdminPolicy     ratelimitDomain.Policy
	FormPolicy      ratelimitDomain.Policy
	SessionCookie   sessionHTTP.CookieConfig
	SessionEnforced bool
}

// NewServer creates a new HTTP server.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin engine with the public and admin route groups.
//
// Admin requests pass the session policy first and the access guard second, so an
// expired session is reported as such before authorization runs. Expired responses
// are charged to the admin rate limit.
func (s *Server) SetupRouter(
	cfg *config.Config,
	deps RouterDeps,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	public := v1.Group("/public")
	public.Use(ratelimitHTTP.RateLimitMiddleware(deps.Limiter, deps.FormPolicy, s.logger))
	{
		public.POST("/inquiries", deps.InquiryHandler.SubmitHandler)
	}

	admin := v1.Group("/admin")
	admin.Use(sessionHTTP.SessionPolicyMiddleware(deps.Sessions, sessionHTTP.SessionPolicy{
		Provider:  deps.Provider,
		Recorder:  deps.Recorder,
		Limiter:   deps.Limiter,
		RateLimit: deps.AdminPolicy,
		Cookie:    deps.SessionCookie,
		Enforced:  deps.SessionEnforced,
	}, s.logger))
	admin.Use(guardHTTP.RequireAdmin(deps.Guard, deps.AdminPolicy, s.logger))
	{
		admin.GET("/inquiries", deps.InquiryHandler.ListHandler)
		admin.GET("/inquiries/export", deps.InquiryHandler.ExportHandler)
		admin.GET("/inquiries/:id", deps.InquiryHandler.GetHandler)
		admin.GET("/audit-logs", deps.AuditLogHandler.ListHandler)
		admin.POST("/session/logout", deps.LogoutHandler.LogoutHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router != nil {
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}
