/**
 * @description
 * This is the main entry point for the entitlement service. It wires together
 * configuration, the database pool, the Stripe client, the event producer,
 * the repositories and services, and the HTTP router, then runs the server
 * until shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/api"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/app"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/config"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/store"
	"github.com/Slumerican4Life/linguista-genesis-sub001/pkg/rabbitmq"
	"github.com/Slumerican4Life/linguista-genesis-sub001/pkg/stripeclient"
)

// bootstrapSchema is applied idempotently at startup. The subscribers table
// is written by the billing webhook service; it is created here as well so a
// fresh environment can boot either service first.
const bootstrapSchema = `
    CREATE TABLE IF NOT EXISTS billing_customers (
        user_id     UUID PRIMARY KEY,
        customer_id TEXT NOT NULL,
        email       TEXT,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS subscribers (
        user_id     UUID PRIMARY KEY,
        customer_id TEXT,
        status      TEXT,
        current_period_end TIMESTAMPTZ,
        updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS verification_attempts (
        id          UUID PRIMARY KEY,
        user_id     UUID NOT NULL,
        channel     TEXT NOT NULL,
        contact     TEXT NOT NULL,
        code        TEXT NOT NULL,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        expires_at  TIMESTAMPTZ NOT NULL,
        verified_at TIMESTAMPTZ
    );
`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Platform-provided PORT (Railway/Render) takes precedence.
	if port := os.Getenv("PORT"); port != "" {
		cfg.ServerPort = port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to work with PgBouncer transaction
	// pooling (SQLSTATE 42P05 otherwise).
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	if _, err := dbpool.Exec(ctx, bootstrapSchema); err != nil {
		logger.Warn("failed ensuring tables (may already exist)", "error", err)
	}

	var producer rabbitmq.Publisher
	if p, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL); err != nil {
		logger.Warn("failed to connect to RabbitMQ at startup, continuing without MQ", "error", err)
		producer = &rabbitmq.NoopPublisher{}
	} else {
		producer = p
		defer producer.Close()
		logger.Info("rabbitmq producer connected")
	}

	stripe := stripeclient.NewClient(cfg.StripeAPIURL, cfg.StripeSecretKey)

	billingRepo := store.NewBillingRepository(dbpool)
	verificationRepo := store.NewVerificationRepository(dbpool)

	billingService := app.NewBillingService(billingRepo, stripe)
	verificationService := app.NewVerificationService(
		verificationRepo,
		producer,
		time.Duration(cfg.CodeTTLMinutes)*time.Minute,
		cfg.MaxSendsPerHour,
	)

	handler := api.NewHandler(billingService, verificationService, cfg.SiteURL)
	router := api.NewRouter(handler, cfg.JWKSURL)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
