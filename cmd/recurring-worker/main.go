package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/export"
	exportgoogle "ledger/internal/export/google"
	exportmemory "ledger/internal/export/memory"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The materialization job consumes these messages; without a broker
	// the worker still runs, logging due counts only.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without publishing", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - due items will be published")
		}
	} else {
		logger.Info("AMQP disabled - due items will not be published")
	}

	var publisher services.DueItemPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	processor := services.NewDueItemProcessor(repo, publisher)

	var summaryWriter export.SummaryWriter
	if cfg.ExportEnabled {
		sheetsClient, err := exportgoogle.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Sheets export client", "error", err)
			os.Exit(1)
		}
		summaryWriter = sheetsClient
	} else {
		summaryWriter = exportmemory.New()
		logger.Info("Export disabled - month summaries kept in memory only")
	}
	exporter := export.NewRunner(repo, summaryWriter)

	logger.Info("Recurring worker configured",
		"interval", cfg.ScanInterval,
		"workspaces", len(cfg.WorkspaceIDs),
		"sqlite_db", cfg.SQLiteDBPath)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		runScan(groupCtx, processor, cfg.WorkspaceIDs)

		ticker := time.NewTicker(cfg.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				runScan(groupCtx, processor, cfg.WorkspaceIDs)
			}
		}
	})

	group.Go(func() error {
		runExport(groupCtx, exporter, cfg.WorkspaceIDs)

		ticker := time.NewTicker(cfg.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				runExport(groupCtx, exporter, cfg.WorkspaceIDs)
			}
		}
	})

	if err := group.Wait(); err != nil {
		logger.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Recurring-worker shutdown complete")
}

func runScan(ctx context.Context, processor *services.DueItemProcessor, workspaceIDs []string) {
	today := core.DateOf(time.Now())
	for _, workspaceID := range workspaceIDs {
		count, err := processor.PublishDueItems(ctx, workspaceID, today)
		if err != nil {
			slog.ErrorContext(ctx, "Due scan failed",
				"workspace_id", workspaceID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "Due scan complete",
			"workspace_id", workspaceID, "published", count)
	}
}

func runExport(ctx context.Context, exporter *export.Runner, workspaceIDs []string) {
	now := time.Now().UTC()
	for _, workspaceID := range workspaceIDs {
		rowRef, err := exporter.ExportMonth(ctx, workspaceID, now.Year(), int(now.Month()))
		if err != nil {
			slog.ErrorContext(ctx, "Month export failed",
				"workspace_id", workspaceID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "Month export complete",
			"workspace_id", workspaceID, "row_ref", rowRef)
	}
}
