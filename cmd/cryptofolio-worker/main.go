package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/backend"
	"cryptofolio/internal/cli"
	applog "cryptofolio/internal/log"
	"cryptofolio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting cryptofolio-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the sync worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	mirrorCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror configuration", applog.FieldError, err)
		os.Exit(1)
	}
	mirror, err := backend.NewFactory(logger.WithComponent(applog.ComponentMirror).Slog()).
		CreateMirror(context.Background(), mirrorCfg)
	if err != nil {
		logger.Error("Failed to initialize history mirror", applog.FieldError, err, "backend", mirrorCfg.Type)
		os.Exit(1)
	}
	if mirror.Cleanup != nil {
		defer func() {
			if err := mirror.Cleanup(); err != nil {
				logger.Warn("Mirror cleanup failed", applog.FieldError, err)
			}
		}()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		logger.WithComponent(applog.ComponentAMQP).Slog())
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, mirror.Mirror, cfg.SyncBatchSize, nil, logger.Slog())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Rows left pending by a previous run or by a server without AMQP.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeHistorySync(gctx, syncWorker.HandleSyncMessage)
	})
	g.Go(func() error {
		syncWorker.RunSweeper(gctx, cfg.SyncInterval)
		return nil
	})

	logger.Info("Worker running", "mirror", mirror.Kind, "sync_interval", cfg.SyncInterval)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	<-done
}
