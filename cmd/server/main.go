// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/branchpulse/internal/api"
	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/cache"
	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/database"
	"github.com/tomtom215/branchpulse/internal/identity"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/reviews"
	"github.com/tomtom215/branchpulse/internal/sentiment"
	"github.com/tomtom215/branchpulse/internal/supervisor"
	"github.com/tomtom215/branchpulse/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("predictor_url", cfg.Predictor.URL).
		Bool("identity_enabled", cfg.Identity.Enabled).
		Msg("Starting Branchpulse")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	predictor := sentiment.NewClient(&cfg.Predictor)
	var reviewOpts []reviews.Option
	if cfg.Cache.StatsTTL > 0 {
		reviewOpts = append(reviewOpts, reviews.WithStatsCache(cache.NewLRU[models.ReviewStats](cfg.Cache.StatsSize, cfg.Cache.StatsTTL)))
	}
	reviewSvc := reviews.NewService(db, predictor, reviewOpts...)

	healthCtx, cancelHealth := context.WithTimeout(ctx, 3*time.Second)
	if h, err := predictor.Health(healthCtx); err != nil {
		logging.Warn().Err(err).Msg("Sentiment predictor not reachable (review analysis will fail until it is)")
	} else {
		logging.Info().Str("status", h.Status).Bool("model_loaded", h.ModelLoaded).Msg("Connected to sentiment predictor")
	}
	cancelHealth()

	// The handler checks for a nil interface, so a disabled provider must
	// stay an untyped nil rather than a nil *identity.Client.
	var identitySvc api.IdentityService
	if cfg.Identity.Enabled {
		identitySvc = identity.NewClient(&cfg.Identity)
		logging.Info().Str("url", cfg.Identity.URL).Msg("Identity provider enabled")
	} else {
		logging.Info().Msg("Identity provider disabled, /api/signup, /api/login and /api/users return 503")
	}

	var jwtManager *auth.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return fmt.Errorf("initialize JWT manager: %w", err)
		}
	}
	if cfg.Security.AuthMode == "none" {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none). Branch routes are publicly accessible.")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	authMiddleware := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, api.WriteAuthError)
	handler := api.NewHandler(cfg, db, reviewSvc, identitySvc, jwtManager)
	router := api.NewRouter(handler, authMiddleware, api.ChiMiddlewareConfigFromSecurity(&cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	if cfg.Predictor.BatchInterval > 0 {
		tree.AddWorkerService(services.NewBatchAnalyzeService(reviewSvc, cfg.Predictor.BatchInterval))
		logging.Info().Dur("interval", cfg.Predictor.BatchInterval).Msg("Scheduled batch analysis enabled")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	if err := awaitTree(ctx, errCh); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}

// awaitTree blocks until the supervisor tree has stopped. ServeBackground
// delivers exactly one value and never closes the channel, so it is read
// once. Cancellation is a clean stop.
func awaitTree(ctx context.Context, errCh <-chan error) error {
	var err error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
