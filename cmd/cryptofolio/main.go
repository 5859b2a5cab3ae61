package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/cache"
	"cryptofolio/internal/cli"
	httpapi "cryptofolio/internal/http"
	applog "cryptofolio/internal/log"
	"cryptofolio/internal/metrics"
	"cryptofolio/internal/services"
	"cryptofolio/internal/timeseries"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := cli.LoadAndValidateConfig(logger)
	logger.Info("Starting cryptofolio", "port", cfg.Port, "sqlite_db", cfg.SQLiteDBPath)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	m := metrics.New()

	summaryCache := cache.NewLRUCache[[]timeseries.SummaryCard](cfg.CacheMaxEntries, cfg.CacheTTL)
	m.RegisterCache("summary", summaryCache.Stats)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Slog())
	cacheManager.Register(summaryCache)
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	// History rows stay pending when AMQP is unavailable; the worker's sweeper picks them up later.
	var publisher amqp.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			logger.WithComponent(applog.ComponentAMQP).Slog())
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without history sync messages", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - history rows will not be mirrored")
	}

	portfolio := services.NewPortfolioService(repo, services.PortfolioServiceOptions{
		Publisher:      publisher,
		Cache:          summaryCache,
		Metrics:        m,
		Logger:         logger,
		MaxConcurrency: cfg.SummaryConcurrency,
	})

	srv := httpapi.NewServer(net.JoinHostPort("", cfg.Port), httpapi.Options{
		Repo:               repo,
		Portfolio:          portfolio,
		Metrics:            m,
		Logger:             logger,
		DefaultInterval:    cfg.DefaultIntervalDays,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	<-done
}
