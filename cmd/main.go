package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "credit-engine/docs"
	"credit-engine/internal/api"
	"credit-engine/internal/config"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/cache"
	"credit-engine/internal/infrastructure/database/postgres"
	"credit-engine/internal/infrastructure/logging"
	"credit-engine/internal/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Credit Engine API
// @version 1.0
// @description Customer registration, loan eligibility and loan issuance.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	rdb := initializeRedis(appCtx, cfg, logger)
	defer closeRedis(rdb, logger)

	rabbitConn := initializeRabbitMQ(cfg, logger)
	defer closeRabbitMQ(rabbitConn, logger)
	publisher := initializePublisher(rabbitConn, cfg, logger)

	services, ingestJob := initializeServices(dbPool, publisher, cfg, logger)

	consumer := startIngestConsumer(appCtx, rabbitConn, cfg, ingestJob, logger)
	cronScheduler := startIngestSchedule(appCtx, cfg, ingestJob, logger)

	var cmdable redis.Cmdable
	if rdb != nil {
		cmdable = rdb
	}
	router := api.SetupRouter(appCtx, services, cmdable, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, consumer, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	if cfg.Database.AutoMigrate {
		logger.Info("Applying database migrations...", "path", cfg.Database.MigrationsPath)
		if err := postgres.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Error("Failed to apply database migrations", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializeRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	rdb, err := cache.OpenRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if rdb == nil {
		logger.Info("Redis disabled; Idempotency-Key headers will be ignored")
	}
	return rdb
}

func closeRedis(rdb *redis.Client, logger *slog.Logger) {
	if rdb == nil {
		return
	}
	logger.Info("Closing Redis client...")
	if err := rdb.Close(); err != nil {
		logger.Error("Error closing Redis client", "error", err)
	}
}

func initializeRabbitMQ(cfg *config.Config, logger *slog.Logger) *amqp.Connection {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled; domain events will not be published")
		return nil
	}
	conn, err := connectRabbitMQ(cfg.RabbitMQ, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	return conn
}

func connectRabbitMQ(cfg config.RabbitMQConfig, logger *slog.Logger) (*amqp.Connection, error) {
	logger.Info("Connecting to RabbitMQ...")
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("RabbitMQ connection established.")

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			logger.Error("RabbitMQ connection closed unexpectedly", "error", amqpErr)
		}
	}()
	return conn, nil
}

func closeRabbitMQ(conn *amqp.Connection, logger *slog.Logger) {
	if conn == nil || conn.IsClosed() {
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := conn.Close(); err != nil {
		logger.Error("Error closing RabbitMQ connection", "error", err)
	}
}

func initializePublisher(conn *amqp.Connection, cfg *config.Config, logger *slog.Logger) event.EventPublisher {
	if conn == nil {
		return event.NoopPublisher{}
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to create RabbitMQ event publisher", "error", err)
		os.Exit(1)
	}
	return publisher
}

func initializeServices(dbPool *pgxpool.Pool, publisher event.EventPublisher, cfg *config.Config, logger *slog.Logger) (api.Services, *ingest.Job) {
	logger.Info("Initializing application components...")
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	unitOfWork := postgres.NewUnitOfWork(dbPool, logger)
	loc := cfg.Credit.Location()

	services := api.Services{
		Customers: customer.NewCustomerService(customerRepo, publisher, logger),
		Credit:    credit.NewService(customerRepo, loanRepo, unitOfWork, publisher, time.Now, loc, logger),
		Loans:     loan.NewLoanService(loanRepo, customerRepo, logger),
	}

	defaults := ingest.Files{Customers: cfg.Ingest.CustomerFile, Loans: cfg.Ingest.LoanFile}
	return services, ingest.NewJob(unitOfWork, defaults, loc, logger)
}

// startIngestConsumer returns nil when RabbitMQ is disabled.
func startIngestConsumer(ctx context.Context, conn *amqp.Connection, cfg *config.Config, job *ingest.Job, logger *slog.Logger) *event.Consumer {
	if conn == nil {
		return nil
	}
	handler := ingest.NewDeliveryHandler(job, logger)
	consumer, err := event.NewConsumer(
		conn,
		cfg.RabbitMQ.ExchangeName,
		cfg.RabbitMQ.IngestQueue,
		cfg.RabbitMQ.ConsumerTag,
		[]string{event.RoutingKeyIngestRequested},
		handler.HandleDelivery,
		logger,
	)
	if err != nil {
		logger.Error("Failed to create ingest consumer", "error", err)
		os.Exit(1)
	}
	if err := consumer.Start(ctx); err != nil {
		logger.Error("Failed to start ingest consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("Ingest consumer started", "queue", cfg.RabbitMQ.IngestQueue)
	return consumer
}

func ingestTimeout(cfg config.IngestConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 30 * time.Minute
	}
	return cfg.Timeout
}

func runIngest(ctx context.Context, job *ingest.Job, trigger ingest.Trigger, timeout time.Duration, logger *slog.Logger) {
	jobLogger := logger.With("job_name", "Ingest", "trigger", trigger)
	jobLogger.Info("Running ingestion job.")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report, err := job.Run(ctx, trigger, ingest.Files{})
	switch {
	case errors.Is(err, ingest.ErrAlreadyRunning):
		jobLogger.Warn("Ingestion skipped; another run is in progress.")
	case err != nil:
		jobLogger.Error("Ingestion job finished with error", slog.Any("error", err))
	default:
		jobLogger.Info("Ingestion job finished successfully.",
			"customers_upserted", report.Customers.Upserted,
			"loans_upserted", report.Loans.Upserted,
		)
	}
}

// startIngestSchedule starts a cron scheduler. The ingestion job is only
// registered when ingest.schedule is set; ingest.onStartup runs it once in
// the background right away.
func startIngestSchedule(ctx context.Context, cfg *config.Config, job *ingest.Job, logger *slog.Logger) *cron.Cron {
	logger.Info("Initializing ingestion scheduler...")
	c := cron.New()
	timeout := ingestTimeout(cfg.Ingest)

	if spec := cfg.Ingest.Schedule; spec != "" {
		jobID, err := c.AddFunc(spec, func() {
			runIngest(ctx, job, ingest.TriggerCron, timeout, logger)
		})
		if err != nil {
			logger.Error("Failed to schedule ingestion job", "schedule", spec, slog.Any("error", err))
		} else {
			logger.Info("Scheduled ingestion job", "schedule", spec, "job_id", jobID)
		}
	} else {
		logger.Info("Ingestion schedule not configured; cron ingestion disabled")
	}

	if cfg.Ingest.OnStartup {
		go runIngest(ctx, job, ingest.TriggerStartup, timeout, logger)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

// handleShutdown blocks until a signal arrives or the server exits, then
// stops the scheduler, the consumer and the HTTP server in that order.
// consumer may be nil.
func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, consumer *event.Consumer, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	if consumer != nil {
		logger.Info("Stopping ingest consumer...")
		consumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}
