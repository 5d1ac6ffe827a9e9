package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"hearth/internal/amqp"
	"hearth/internal/config"
	"hearth/internal/export"
	gexport "hearth/internal/export/google"
	memexport "hearth/internal/export/memory"
	"hearth/internal/storage"
	"hearth/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting hearth-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The worker reads the journal the API writes, so it always talks
	// to SQLite directly.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var writer export.StatementWriter
	switch cfg.ExportBackend {
	case "google":
		client, err := gexport.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets export client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export backend initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		writer = memexport.New()
		logger.Info("Memory export backend initialized")
	}

	// Unlike the API server the worker is message-driven, so a broker
	// is mandatory. Fall back to the conventional local address when
	// AMQP_URL is unset.
	amqpURL := cfg.AMQPURL
	if amqpURL == "" {
		amqpURL = config.DefaultAMQPURL
	}

	amqpClient, err := amqp.NewClient(amqpURL, cfg.AMQPExchange, cfg.AMQPAlertQueue, cfg.AMQPExportQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	statements := worker.NewStatementWorker(repo, writer, cfg.SweepBatchSize)
	alerts := worker.NewAlertWorker()

	// On startup, flush any statements that were recorded while the
	// worker was down.
	if err := statements.ProcessPending(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Don't exit - the periodic sweep retries
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeBudgetAlerts(gctx, func(msg *amqp.BudgetAlertMessage) error {
			return alerts.HandleAlertMessage(gctx, msg)
		})
	})
	g.Go(func() error {
		return amqpClient.ConsumeStatementExports(gctx, func(msg *amqp.StatementExportMessage) error {
			return statements.HandleExportMessage(gctx, msg)
		})
	})
	g.Go(func() error {
		return statements.RunSweep(gctx, cfg.SweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	// Give in-flight handlers a moment before the process exits.
	time.Sleep(time.Second)
	logger.Info("Worker shutdown complete")
}
