package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/aelshahawy/dokan/internal"
	"github.com/aelshahawy/dokan/internal/auth"
	"github.com/aelshahawy/dokan/internal/billing"
	"github.com/aelshahawy/dokan/internal/bootstrap"
	"github.com/aelshahawy/dokan/internal/events"
	"github.com/aelshahawy/dokan/internal/handler"
	"github.com/aelshahawy/dokan/internal/kvstore"
	"github.com/aelshahawy/dokan/internal/repository"
	"github.com/aelshahawy/dokan/internal/service"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// database/sql connection for migrations only
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// pgx connection pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	if err := bootstrap.EnsureAdmin(ctx, store, cfg.Admin, logger); err != nil {
		return fmt.Errorf("admin bootstrap failed: %w", err)
	}

	// Key-value store backs sessions and coupons. Redis in deployment,
	// in-memory when REDIS_URL is not set.
	var kv kvstore.Store
	if cfg.RedisURL != "" {
		redisStore, err := kvstore.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisStore.Close()
		kv = redisStore
		logger.Info("Redis connection established")
	} else {
		kv = kvstore.NewMemoryStore()
		logger.Warn("REDIS_URL not set, sessions and coupons will not survive restarts")
	}

	tokens := auth.NewTokenStore(kv, time.Duration(cfg.SessionTTLHours)*time.Hour)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS connection established")
	} else {
		logger.Warn("NATS_URL not set, order events will not be published")
	}

	metrics := telemetry.NewMetrics("dokan")

	logger.Info("Initializing Stripe billing provider...")
	provider := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	svcs := handler.Services{
		Carts:    service.NewCartService(store, metrics),
		Coupons:  service.NewCouponService(store, kv, metrics),
		Orders:   service.NewOrderService(store, publisher, logger, metrics),
		Checkout: service.NewCheckoutService(store, provider, cfg.BaseURL),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	handler.Register(e, svcs, tokens, provider, metrics)

	// Serve until interrupted, then drain in-flight requests.
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("Starting server", slog.String("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("Shutting down...")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
