package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gopayout/internal/adapter/http"
	"github.com/iho/gopayout/internal/adapter/http/handler"
	"github.com/iho/gopayout/internal/adapter/http/middleware"
	"github.com/iho/gopayout/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gopayout/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gopayout/internal/adapter/repository/redis"
	"github.com/iho/gopayout/internal/infrastructure/config"
	"github.com/iho/gopayout/internal/infrastructure/eventpublisher"
	"github.com/iho/gopayout/internal/infrastructure/logger"
	"github.com/iho/gopayout/internal/infrastructure/metrics"
	"github.com/iho/gopayout/internal/infrastructure/postgres"
	"github.com/iho/gopayout/internal/infrastructure/redis"
	"github.com/iho/gopayout/internal/infrastructure/scheduler"
	"github.com/iho/gopayout/internal/usecase"
)

const (
	outboxStreamMaxLen   = 100000
	statsCacheSize       = 64
	limiterIdleTimeout   = time.Hour
	limiterCleanupPeriod = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "gopayout",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Redis is optional: without it stats are cached in-process and job
	// locks only guard this process.
	var (
		redisClient goredis.UniversalClient
		cache       usecase.Cache = memory.NewCache(statsCacheSize, cfg.StatsCacheTTL)
		locker      usecase.Locker
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.Config{
			URL:         cfg.RedisURL,
			PoolSize:    cfg.RedisPoolSize,
			DialTimeout: cfg.RedisDialTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		log.Info().Msg("connected to redis")

		redisClient = client
		cache = redisRepo.NewCache(client)
		locker = redisRepo.NewRunLock(client)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	isolation, err := postgresRepo.ParseIsolationLevel(cfg.DatabaseTxIsolation)
	if err != nil {
		return fmt.Errorf("DATABASE_TX_ISOLATION: %w", err)
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool).WithIsolation(isolation)
	merchantRepo := postgresRepo.NewMerchantRepository(pool)
	orderRepo := postgresRepo.NewOrderRepository()
	disbursementRepo := postgresRepo.NewDisbursementRepository(pool)
	adjustmentRepo := postgresRepo.NewFeeAdjustmentRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrierWithPolicy(log, postgresRepo.RetryPolicy{
		MaxRetries: cfg.DatabaseRetryMax,
		MaxElapsed: cfg.DatabaseRetryWindow,
	})

	// Initialize use cases
	statsUC := usecase.NewStatsUseCase(disbursementRepo, adjustmentRepo, cache, log).WithCacheTTL(cfg.StatsCacheTTL)
	disbursementUC := usecase.NewDisbursementUseCase(usecase.DisbursementConfig{
		TxManager:     txManager,
		Merchants:     merchantRepo,
		Orders:        orderRepo,
		Disbursements: disbursementRepo,
		Outbox:        outboxRepo,
		IDGen:         idGen,
		Retrier:       retrier,
		Recorder:      appMetrics,
		Stats:         statsUC,
		Logger:        log.With().Str("job", usecase.JobDisbursements).Logger(),
		BatchSize:     cfg.DisbursementBatchSize,
		Workers:       cfg.DisbursementWorkers,
		TxTimeout:     cfg.DisbursementTxTimeout,
	})
	monthlyFeeUC := usecase.NewMonthlyFeeUseCase(usecase.MonthlyFeeConfig{
		TxManager:     txManager,
		Merchants:     merchantRepo,
		Disbursements: disbursementRepo,
		Adjustments:   adjustmentRepo,
		Outbox:        outboxRepo,
		IDGen:         idGen,
		Retrier:       retrier,
		Recorder:      appMetrics,
		Stats:         statsUC,
		Logger:        log.With().Str("job", usecase.JobMonthlyFees).Logger(),
		BatchSize:     cfg.MonthlyFeeBatchSize,
	})
	backfillUC := usecase.NewBackfillUseCase(disbursementRepo, disbursementUC, monthlyFeeUC, log)
	jobs := usecase.NewJobRunner(locker, idGen, cfg.JobLockTTL, log)

	sched, err := newScheduler(cfg, jobs, disbursementUC, monthlyFeeUC, log)
	if err != nil {
		return err
	}

	// Outbox publisher
	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if cfg.OutboxStream != "" && redisClient != nil {
		publisher = eventpublisher.NewStreamPublisher(redisClient, cfg.OutboxStream, outboxStreamMaxLen)
	}
	outboxWorker := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Recorder:   appMetrics,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	// Create router
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(appMetrics)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DisbursementHandler: handler.NewDisbursementHandler(disbursementUC, backfillUC, disbursementRepo, jobs),
		MonthlyFeeHandler:   handler.NewMonthlyFeeHandler(monthlyFeeUC, jobs),
		StatsHandler:        handler.NewStatsHandler(statsUC),
		MerchantHandler:     handler.NewMerchantHandler(merchantRepo),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		Logger:              log,
		Metrics:             appMetrics,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RateLimiter:         rateLimiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return ignoreCanceled(outboxWorker.Start(gctx))
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimiter.CleanupLimiters(limiterIdleTimeout)
			}
		}
	})

	if sched != nil {
		g.Go(func() error {
			return ignoreCanceled(sched.Start(gctx))
		})
	}

	return g.Wait()
}

// newScheduler returns nil when the scheduler is disabled.
func newScheduler(cfg *config.Config, jobs *usecase.JobRunner, disbursements *usecase.DisbursementUseCase, monthlyFees *usecase.MonthlyFeeUseCase, log zerolog.Logger) (*scheduler.Scheduler, error) {
	if !cfg.SchedulerEnabled {
		return nil, nil
	}

	disbursementAt, err := scheduler.ParseTimeOfDay(cfg.DisbursementRunAt)
	if err != nil {
		return nil, fmt.Errorf("DISBURSEMENT_RUN_AT: %w", err)
	}
	monthlyFeeAt, err := scheduler.ParseTimeOfDay(cfg.MonthlyFeeRunAt)
	if err != nil {
		return nil, fmt.Errorf("MONTHLY_FEE_RUN_AT: %w", err)
	}

	return scheduler.New(scheduler.Config{
		DisbursementAt: disbursementAt,
		MonthlyFeeAt:   monthlyFeeAt,
		Disbursements: func(ctx context.Context, now time.Time) error {
			return jobs.Run(ctx, usecase.JobDisbursements, func(ctx context.Context) error {
				_, err := disbursements.Run(ctx, now)
				return err
			})
		},
		MonthlyFees: func(ctx context.Context, now time.Time) error {
			return jobs.Run(ctx, usecase.JobMonthlyFees, func(ctx context.Context) error {
				_, err := monthlyFees.ProcessPreviousMonth(ctx, now)
				return err
			})
		},
		Logger: log.With().Str("component", "scheduler").Logger(),
	}), nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
