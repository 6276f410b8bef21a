package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fintrellis/bank-accounts/internal/consumers"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/fintrellis/bank-accounts/internal/core/services"
	"github.com/fintrellis/bank-accounts/internal/handlers"
	"github.com/fintrellis/bank-accounts/internal/middleware"
	"github.com/fintrellis/bank-accounts/internal/repositories/database/pgsql"
	"github.com/fintrellis/bank-accounts/pkg/config"
	"github.com/fintrellis/bank-accounts/pkg/database"
	"github.com/fintrellis/bank-accounts/pkg/rabbitmq"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Broker connection: declares the exchange and queue topology on startup.
	broker, err := rabbitmq.New(cfg.AMQPURL, logger)
	if err != nil {
		logger.Error("Failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()
	logger.Info("Broker connection established.")

	// Repositories
	accountRepo := pgsql.NewAccountRepository(dbPool)
	currencyRepo := pgsql.NewCurrencyRepository(dbPool)
	outboxRepo := pgsql.NewOutboxRepository(dbPool)
	inboxRepo := pgsql.NewInboxRepository(dbPool)

	// Services
	accountService := services.NewAccountService(accountRepo, currencyRepo, outboxRepo, logger)
	currencyService := services.NewCurrencyService(currencyRepo)

	dispatcher := services.NewOutboxDispatcher(outboxRepo, broker, services.DispatcherConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
		RetryDelay:   cfg.OutboxRetryDelay,
	}, logger)
	go dispatcher.Start(ctx)

	// Consumers: each queue gets its own idempotent consumption pipeline.
	antifraudConsumer := consumers.NewConsumer(inboxRepo, consumers.NewAntifraudHandler(accountRepo, logger), logger)
	if err := broker.Subscribe(ctx, domain.QueueAntifraud, antifraudConsumer.Consume); err != nil {
		logger.Error("Failed to subscribe antifraud consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	auditConsumer := consumers.NewConsumer(inboxRepo, consumers.NewAuditHandler(inboxRepo), logger)
	if err := broker.Subscribe(ctx, domain.QueueAudit, auditConsumer.Consume); err != nil {
		logger.Error("Failed to subscribe audit consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, accountService, currencyService, broker, outboxRepo, cfg.OutboxReadyThreshold)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}

	return nil
}
