package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	queueRedis "github.com/finbridge/remit/internal/adapter/queue/redis"
	postgresRepo "github.com/finbridge/remit/internal/adapter/repository/postgres"
	"github.com/finbridge/remit/internal/infrastructure/config"
	"github.com/finbridge/remit/internal/infrastructure/logger"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
	"github.com/finbridge/remit/internal/infrastructure/postgres"
	"github.com/finbridge/remit/internal/infrastructure/redis"
	"github.com/finbridge/remit/internal/usecase"
	"github.com/finbridge/remit/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "remit-worker"})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Prometheus metrics, scraped over a standalone listener
	appMetrics := metrics.New()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.MetricsPort),
		Handler:     metricsMux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("metrics listener started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics listener failed")
		}
	}()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Job queue
	jobQueue := queueRedis.NewQueue(redisClient, idGen, appMetrics, appLogger)

	// Settlement
	settlementUC := usecase.NewSettlementUseCase(
		txManager, accountRepo, transactionRepo, entryRepo, idGen,
		appMetrics, appLogger, cfg.ExpiryWindow,
	)

	w := worker.New(worker.Config{
		Queue:                 jobQueue,
		Settlement:            settlementUC,
		Retrier:               postgresRepo.NewRetrier(),
		Metrics:               appMetrics,
		Logger:                appLogger,
		ProcessConcurrency:    cfg.ProcessConcurrency,
		AutoCancelConcurrency: cfg.AutoCancelConcurrency,
	})

	runErr := w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics listener forced to shutdown")
	}

	if runErr != nil && runErr != context.Canceled {
		log.Fatal().Err(runErr).Msg("worker failed")
	}

	log.Info().Msg("worker exited")
}
