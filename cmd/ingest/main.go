// Command ingest loads the customer and loan workbooks into the database, or
// with --enqueue asks a running server to do it over RabbitMQ.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credit-engine/internal/config"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/database/postgres"
	"credit-engine/internal/infrastructure/logging"
	"credit-engine/internal/ingest"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	configPath  string
	enqueue     bool
	requestedBy string
}

// parseFlags registers the command line on fs and binds the file flags to v,
// so that flags override config.yml and the environment.
func parseFlags(fs *pflag.FlagSet, v *viper.Viper, args []string) (options, error) {
	var opts options
	fs.StringVar(&opts.configPath, "config", ".", "directory containing config.yml")
	fs.String("customers", "", "customer workbook (.xlsx)")
	fs.String("loans", "", "loan workbook (.xlsx)")
	fs.BoolVar(&opts.enqueue, "enqueue", false, "publish an ingest.requested event instead of running locally")
	fs.StringVar(&opts.requestedBy, "requested-by", "cli", "requester recorded on enqueued events")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if err := v.BindPFlag("ingest.customerFile", fs.Lookup("customers")); err != nil {
		return opts, err
	}
	if err := v.BindPFlag("ingest.loanFile", fs.Lookup("loans")); err != nil {
		return opts, err
	}
	return opts, nil
}

func main() {
	v := viper.New()
	opts, err := parseFlags(pflag.CommandLine, v, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(v, opts.configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files := ingest.Files{Customers: cfg.Ingest.CustomerFile, Loans: cfg.Ingest.LoanFile}
	if opts.enqueue {
		err = enqueue(ctx, cfg.RabbitMQ, files, opts.requestedBy, logger)
	} else {
		err = runLocal(ctx, cfg, files, logger)
	}
	if err != nil {
		logger.Error("Ingestion failed", "error", err)
		os.Exit(1)
	}
}

func runLocal(ctx context.Context, cfg *config.Config, files ingest.Files, logger *slog.Logger) error {
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, logger); err != nil {
			return err
		}
	}

	pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	timeout := cfg.Ingest.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	job := ingest.NewJob(postgres.NewUnitOfWork(pool, logger), files, cfg.Credit.Location(), logger)
	report, err := job.Run(ctx, ingest.TriggerCLI, files)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func enqueue(ctx context.Context, cfg config.RabbitMQConfig, files ingest.Files, requestedBy string, logger *slog.Logger) error {
	if cfg.URL == "" {
		return errors.New("rabbitmq.url is required with --enqueue")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		return err
	}

	evt := event.IngestRequestedEvent{
		Timestamp:    time.Now().UTC(),
		RequestedBy:  requestedBy,
		CustomerFile: files.Customers,
		LoanFile:     files.Loans,
	}
	if err := publisher.PublishIngestRequested(ctx, evt); err != nil {
		return err
	}
	logger.Info("Ingestion request published", "exchange", cfg.ExchangeName, "customers", files.Customers, "loans", files.Loans)
	return nil
}
