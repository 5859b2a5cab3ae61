package main

import (
	"os"
	"time"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/cli"
	applog "cryptofolio/internal/log"
	"cryptofolio/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSnapshot)
	logger.Info("Starting snapshot-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// New snapshot rows are announced to the sync worker when AMQP is configured.
	var publisher amqp.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			logger.WithComponent(applog.ComponentAMQP).Slog())
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	checker, err := services.GetDuenessChecker(services.Cadence(cfg.SnapshotCadence))
	if err != nil {
		logger.Error("Invalid snapshot cadence", applog.FieldError, err)
		os.Exit(1)
	}

	portfolio := services.NewPortfolioService(repo, services.PortfolioServiceOptions{
		Publisher: publisher,
		Logger:    logger,
	})
	processor := services.NewSnapshotProcessor(repo, portfolio, checker, nil, logger.Slog())

	logger.Info("Snapshot processor configured",
		"interval", cfg.SnapshotInterval,
		"cadence", cfg.SnapshotCadence,
		"sqlite_db", cfg.SQLiteDBPath)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	run := func() {
		if _, err := processor.ProcessDueSnapshots(ctx, time.Now()); err != nil {
			logger.Error("Snapshot processing failed", applog.FieldError, err)
		}
	}

	// Catch up on start, then on every tick.
	run()

	ticker := time.NewTicker(cfg.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping snapshot processor")
			<-done
			return
		case <-ticker.C:
			run()
		}
	}
}
