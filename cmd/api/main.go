package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/coupon"
	"foodhub/internal/database"
	"foodhub/internal/events"
	"foodhub/internal/handler"
	"foodhub/internal/repository"
	"foodhub/internal/router"
	"foodhub/internal/service"
	"foodhub/internal/session"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting foodhub API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	cartRepo := repository.NewCartRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)

	evaluator, err := newEvaluator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon evaluator: %w", err)
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer closeSessions()

	publisher, err := events.NewPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	cartService := service.NewCartService(cartRepo, catalogRepo, evaluator, sessions, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, catalogRepo, evaluator, publisher, logger)
	reviewService := service.NewReviewService(reviewRepo, catalogRepo, logger)
	catalogService := service.NewCatalogService(catalogRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Review:  handler.NewReviewHandler(reviewService, logger),
		Catalog: handler.NewCatalogHandler(catalogService, logger),
	}, sessions, cfg.Auth.JWTSecret, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newEvaluator loads the coupon catalogue from S3 with a local fallback,
// or uses the built-in rules when no rule file is configured.
func newEvaluator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (coupon.Evaluator, error) {
	evalConfig := &coupon.EvaluatorConfig{}
	if cfg.Coupon.RulesPath != "" {
		evalConfig.FilePaths = []string{cfg.Coupon.RulesPath}
	}

	var primary coupon.Loader
	if cfg.S3.Enabled {
		l, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("S3 unavailable, coupon rules come from the local file system only")
		} else {
			primary = l
		}
	}

	loader := coupon.NewFallbackLoader(primary, coupon.NewFileLoader(logger), logger)
	return coupon.NewEvaluator(ctx, evalConfig, loader, logger)
}

// newSessionStore returns a Redis-backed store when enabled, else an
// in-memory one. The returned func releases the store's resources.
func newSessionStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (session.Store, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-memory session store (Redis disabled)")
		return session.NewMemoryStore(), func() {}, nil
	}

	client, err := session.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("addr", cfg.Addr).Msg("using Redis session store")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	return session.NewRedisStore(client, cfg.SessionTTL, logger), closeFn, nil
}
