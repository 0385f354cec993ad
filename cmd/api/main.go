package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promokiosk/internal/auth"
	"promokiosk/internal/config"
	"promokiosk/internal/database"
	"promokiosk/internal/export"
	"promokiosk/internal/handler"
	"promokiosk/internal/repository"
	"promokiosk/internal/router"
	"promokiosk/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting promokiosk API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Apply schema migrations
	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	storeRepo := repository.NewStoreRepository(pool, logger)
	adminRepo := repository.NewAdminRepository(pool, logger)
	promoRepo := repository.NewPromotionRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)

	// Initialize report exporter (optional)
	var exporter export.Exporter
	if cfg.S3.Enabled {
		exporter, err = export.NewS3Exporter(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 exporter, report export disabled")
			exporter = nil
		}
	} else {
		logger.Info().Msg("report export disabled (S3 disabled)")
	}

	// Initialize services
	storeService := service.NewStoreService(storeRepo, userRepo, logger)
	adminService := service.NewAdminService(adminRepo, storeRepo, logger)
	promotionService := service.NewPromotionService(promoRepo, storeRepo, logger)
	couponService := service.NewCouponService(couponRepo, storeRepo, logger)
	statsService := service.NewStatsService(statsRepo, storeRepo, logger)

	// Initialize token issuer
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	// Initialize HTTP handlers
	storeHandler := handler.NewStoreHandler(storeService, logger)
	couponHandler := handler.NewCouponHandler(couponService, logger)
	adminHandler := handler.NewAdminHandler(adminService, tokens, logger)
	promotionHandler := handler.NewPromotionHandler(promotionService, logger)
	statsHandler := handler.NewStatsHandler(statsService, exporter, logger)

	// Initialize router
	mux := router.New(storeHandler, couponHandler, adminHandler, promotionHandler, statsHandler, tokens, logger)

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
