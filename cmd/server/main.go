package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/finbridge/remit/internal/adapter/gateway"
	httpAdapter "github.com/finbridge/remit/internal/adapter/http"
	"github.com/finbridge/remit/internal/adapter/http/handler"
	queueRedis "github.com/finbridge/remit/internal/adapter/queue/redis"
	"github.com/finbridge/remit/internal/adapter/rate"
	postgresRepo "github.com/finbridge/remit/internal/adapter/repository/postgres"
	redisRepo "github.com/finbridge/remit/internal/adapter/repository/redis"
	"github.com/finbridge/remit/internal/infrastructure/config"
	"github.com/finbridge/remit/internal/infrastructure/logger"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
	"github.com/finbridge/remit/internal/infrastructure/postgres"
	"github.com/finbridge/remit/internal/infrastructure/redis"
	"github.com/finbridge/remit/internal/scheduler"
	"github.com/finbridge/remit/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "remit-server"})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx := context.Background()

	// Apply schema migrations before anything touches the database
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

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

	// Initialize repositories
	accountRepo := postgresRepo.NewAccountRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Prometheus metrics
	appMetrics := metrics.New()

	// Exchange rates
	rateCache := redisRepo.NewRateCache(redisClient, cfg.RateCacheTTL)
	rateAPI := rate.NewAPIClient(cfg.ExchangeRateAPIURL, cfg.ExchangeRateAPIKey, 10*time.Second)
	rateProvider := rate.NewProvider(rateCache, rateAPI, appMetrics, appLogger)

	// Payment gateways
	gateways := map[string]usecase.PaymentGateway{
		"paystack": gateway.NewPaystack(gateway.PaystackConfig{
			BaseURL:   cfg.PaystackBaseURL,
			SecretKey: cfg.PaystackSecretKey,
		}),
		"stripe": gateway.NewStripe(gateway.StripeConfig{
			BaseURL:       cfg.StripeBaseURL,
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.PaymentRedirectURL,
			CancelURL:     cfg.PaymentRedirectURL,
		}),
	}

	// Job queue
	jobQueue := queueRedis.NewQueue(redisClient, idGen, appMetrics, appLogger)

	// Initialize use cases
	quoter := usecase.NewQuoter(rateProvider, usecase.DefaultFeePolicy(), usecase.DefaultMinimumAmounts())
	transferUC := usecase.NewTransferUseCase(
		accountRepo, userRepo, transactionRepo,
		quoter, gateways, jobQueue, idGen,
		appMetrics, appLogger, cfg.ExpiryWindow,
	)
	accountUC := usecase.NewAccountUseCase(accountRepo, userRepo)
	schedulerUC := usecase.NewSchedulerUseCase(transactionRepo, jobQueue, appLogger, cfg.ExpiryWindow, cfg.SchedulerBatch)

	// Initialize handlers
	transferHandler := handler.NewTransferHandler(transferUC)
	walletHandler := handler.NewWalletHandler(accountUC)
	webhookHandler := handler.NewWebhookHandler(gateways, jobQueue, transactionRepo, appMetrics, appLogger)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransferHandler: transferHandler,
		WalletHandler:   walletHandler,
		WebhookHandler:  webhookHandler,
		HealthHandler:   healthHandler,
		Logger:          appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Reconciliation sweep runs alongside the API server
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	sweeper := scheduler.New(scheduler.Config{
		Sweeper:  schedulerUC,
		Interval: cfg.SchedulerInterval,
	})
	go func() {
		if err := sweeper.Start(schedulerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopScheduler()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
