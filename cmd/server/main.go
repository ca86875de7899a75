package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/app"
	"github.com/nekogravitycat/hotel-management-backend/internal/config"
	"github.com/nekogravitycat/hotel-management-backend/internal/db"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.New(cfg.LogLevel, cfg.IsProduction())

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		slog.Info("database schema applied")
	}

	// Optional infrastructure
	publisher, closePublisher, err := app.NewEventPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return err
	}
	defer closePublisher()

	rdb, err := app.NewRedis(ctx, cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	container := app.NewContainer(app.Config{
		IsProduction:      cfg.IsProduction(),
		ProdOrigins:       cfg.ProdOrigins,
		DBPool:            pool,
		TxMaxRetries:      cfg.DB.TxMaxRetries,
		JWTSecret:         cfg.JWT.Secret,
		JWTTTL:            cfg.JWT.AccessTokenTTL,
		BcryptCost:        cfg.JWT.BcryptCost,
		Events:            publisher,
		Redis:             rdb,
		RateLimitCapacity: cfg.RateLimit.Capacity,
		RateLimitRefill:   cfg.RateLimit.RefillInterval,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for Ctrl+C or a listener failure
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serverErr:
		return err
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server forced to shutdown", "error", err)
	}

	slog.Info("server exited gracefully")
	return nil
}
