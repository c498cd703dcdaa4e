package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/healo/piiguard/internal/app"
	"github.com/healo/piiguard/internal/config"
)

// RunServer starts the API server, the metrics server and the rate-limit sweeper.
// Blocks until SIGINT/SIGTERM or until one of them fails. Shutdown stops both servers
// and then drains in-flight audit writes, all within ShutdownTimeout.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("pii_backend", cfg.PIIEncryptionBackend),
		slog.String("rate_limit_store", cfg.RateLimitStore),
		slog.Bool("session_policy_enforced", cfg.SessionPolicyEnforced()),
	)

	// Get HTTP server from container (this initializes all dependencies)
	server, err := container.HTTPServer()
	if err != nil {
		closeContainer(context.Background(), container, logger)
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		closeContainer(context.Background(), container, logger)
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	sweeper, err := container.Sweeper()
	if err != nil {
		closeContainer(context.Background(), container, logger)
		return fmt.Errorf("failed to initialize rate limit sweeper: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	// Stop the servers once a signal arrives or any member of the group fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	runErr := g.Wait()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer drainCancel()
	closeContainer(drainCtx, container, logger)

	if runErr != nil {
		logger.Error("server stopped with error", slog.Any("error", runErr))
		return runErr
	}

	logger.Info("server stopped")
	return nil
}
