package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"viaggio/internal/amqp"
	"viaggio/internal/cli"
	"viaggio/internal/log"
	"viaggio/internal/sheets"
	gsheet "viaggio/internal/sheets/google"
	mem "viaggio/internal/sheets/memory"
	"viaggio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a spreadsheet ID the worker appends to an in-memory log,
	// which keeps local development running end to end.
	var travelLog sheets.TravelLogWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		travelLog = client
		logger.Info("Google Sheets travel log initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		travelLog = mem.NewStore()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, using in-memory travel log")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, travelLog, cfg.SyncBatchSize)

	// Drain anything that accumulated while the worker was down.
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("startup sync check failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeExpenseSync(ctx, func(msg *amqp.ExpenseSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	})

	// Periodic rescan covers messages the broker lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPendingExpenses(ctx); err != nil {
					logger.Error("periodic sync failed", log.FieldError, err)
				}
			}
		}
	})

	logger.Info("viaggio worker started",
		"queue", cfg.AMQPQueue,
		"sync_interval", cfg.SyncInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
