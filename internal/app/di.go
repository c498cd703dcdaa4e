// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	auditHTTP "github.com/healo/piiguard/internal/audit/http"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	"github.com/healo/piiguard/internal/config"
	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	cryptoService "github.com/healo/piiguard/internal/crypto/service"
	cryptoUseCase "github.com/healo/piiguard/internal/crypto/usecase"
	"github.com/healo/piiguard/internal/database"
	guardUseCase "github.com/healo/piiguard/internal/guard/usecase"
	"github.com/healo/piiguard/internal/http"
	identityService "github.com/healo/piiguard/internal/identity/service"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	inquiryHTTP "github.com/healo/piiguard/internal/inquiry/http"
	inquiryUseCase "github.com/healo/piiguard/internal/inquiry/usecase"
	"github.com/healo/piiguard/internal/metrics"
	piiService "github.com/healo/piiguard/internal/pii/service"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
	sessionHTTP "github.com/healo/piiguard/internal/session/http"
	sessionUseCase "github.com/healo/piiguard/internal/session/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	redisClient     redis.UniversalClient

	// Crypto
	keyring      *cryptoDomain.Keyring
	kmsService   cryptoService.KMSService
	aeadManager  cryptoService.AEADManager
	engine       cryptoService.Engine
	piiEncryptor cryptoUseCase.Encryptor
	fieldCipher  cryptoUseCase.FieldCipher
	masker       *piiService.Masker

	// Rate limiting
	rateLimitStore ratelimitUseCase.Store
	rateLimiter    ratelimitUseCase.RateLimiter
	sweeper        *ratelimitUseCase.Sweeper

	// Identity
	identityProvider *identityService.Provider
	adminResolver    identityUseCase.AdminResolver

	// Audit
	auditRepository auditUseCase.Repository
	auditRecorder   *auditUseCase.Recorder
	auditLogUseCase auditUseCase.AuditLogUseCase
	auditLogHandler *auditHTTP.AuditLogHandler

	// Session and guard
	sessionStore   sessionUseCase.Store
	sessionUseCase sessionUseCase.SessionUseCase
	logoutHandler  *sessionHTTP.LogoutHandler
	accessGuard    guardUseCase.Guard

	// Inquiry
	inquiryRepository inquiryUseCase.InquiryRepository
	inquiryUseCase    inquiryUseCase.InquiryUseCase
	inquiryHandler    *inquiryHTTP.InquiryHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	redisClientInit       sync.Once
	keyringInit           sync.Once
	kmsServiceInit        sync.Once
	aeadManagerInit       sync.Once
	engineInit            sync.Once
	piiEncryptorInit      sync.Once
	fieldCipherInit       sync.Once
	maskerInit            sync.Once
	rateLimitStoreInit    sync.Once
	rateLimiterInit       sync.Once
	sweeperInit           sync.Once
	identityProviderInit  sync.Once
	adminResolverInit     sync.Once
	auditRepositoryInit   sync.Once
	auditRecorderInit     sync.Once
	auditLogUseCaseInit   sync.Once
	auditLogHandlerInit   sync.Once
	sessionStoreInit      sync.Once
	sessionUseCaseInit    sync.Once
	logoutHandlerInit     sync.Once
	accessGuardInit       sync.Once
	inquiryRepositoryInit sync.Once
	inquiryUseCaseInit    sync.Once
	inquiryHandlerInit    sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry provider backed by the Prometheus exporter.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is returned
// when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// In-flight audit writes are drained before the database is closed.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.auditRecorder != nil {
		if err := c.auditRecorder.Wait(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("audit drain: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.keyring != nil {
		c.keyring.Close()
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initBusinessMetrics creates business metrics on the shared meter provider.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	deps, err := c.routerDeps()
	if err != nil {
		return nil, err
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.config, deps, metricsProvider, c.config.MetricsNamespace)

	return server, nil
}

// routerDeps gathers the handlers and middlewares mounted by the API router.
func (c *Container) routerDeps() (http.RouterDeps, error) {
	limiter, err := c.RateLimiter()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get rate limiter: %w", err)
	}

	guard, err := c.AccessGuard()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get access guard: %w", err)
	}

	sessions, err := c.SessionUseCase()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get session use case: %w", err)
	}

	provider, err := c.IdentityProvider()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get identity provider: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get audit recorder: %w", err)
	}

	inquiryHandler, err := c.InquiryHandler()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get inquiry handler: %w", err)
	}

	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get audit log handler: %w", err)
	}

	logoutHandler, err := c.LogoutHandler()
	if err != nil {
		return http.RouterDeps{}, fmt.Errorf("failed to get logout handler: %w", err)
	}

	return http.RouterDeps{
		Limiter:         limiter,
		Guard:           guard,
		Sessions:        sessions,
		Provider:        provider,
		InquiryHandler:  inquiryHandler,
		AuditLogHandler: auditLogHandler,
		LogoutHandler:   logoutHandler,
		Recorder:        recorder,
		AdminPolicy:     c.adminRateLimitPolicy(),
		FormPolicy:      c.formRateLimitPolicy(),
		SessionCookie:   c.sessionCookieConfig(),
		SessionEnforced: c.config.SessionPolicyEnforced(),
	}, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
