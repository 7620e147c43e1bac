package main

import (
	"context"
	"database/sql"
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

	httpAdapter "github.com/iho/expensetracker/internal/adapter/http"
	"github.com/iho/expensetracker/internal/adapter/http/handler"
	"github.com/iho/expensetracker/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/expensetracker/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/expensetracker/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/expensetracker/internal/adapter/repository/sqlite"
	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/infrastructure/auth"
	"github.com/iho/expensetracker/internal/infrastructure/config"
	"github.com/iho/expensetracker/internal/infrastructure/eventpublisher"
	"github.com/iho/expensetracker/internal/infrastructure/idgen"
	"github.com/iho/expensetracker/internal/infrastructure/logger"
	"github.com/iho/expensetracker/internal/infrastructure/metrics"
	"github.com/iho/expensetracker/internal/infrastructure/postgres"
	"github.com/iho/expensetracker/internal/infrastructure/redis"
	"github.com/iho/expensetracker/internal/infrastructure/sqlite"
	"github.com/iho/expensetracker/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

// entryStore is a ledger store that can also load fixture rows.
type entryStore interface {
	usecase.EntryRepository
	Seed(ctx context.Context, entries []domain.Entry) error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Connect to Redis (optional)
	var redisClient goredis.UniversalClient
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.RedisURL,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
			DialTimeout:  cfg.RedisDialTimeout,
			ReadTimeout:  cfg.RedisReadTimeout,
			WriteTimeout: cfg.RedisWriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		redisClient = client
		log.Info().Msg("connected to redis")
	}

	sink, closeSink, err := newPublisher(cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer closeSink()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	dispatcher := usecase.NewDispatcher(cfg.DispatchWorkers, cfg.DispatchQueueSize)
	defer dispatcher.Close()

	eventsLog := logger.Component(log, "events")
	entriesLog := logger.Component(log, "entries")
	eventPublisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Publisher:  sink,
		Logger:     &eventsLog,
		BufferSize: cfg.EventsBuffer,
	})

	ucCfg := usecase.EntryUseCaseConfig{
		Repo:       store,
		Dispatcher: dispatcher,
		Publisher:  eventPublisher,
		IDGen:      idgen.NewULIDGenerator(),
		CacheTTL:   cfg.SummaryCacheTTL,
		Recorder:   m,
		Logger:     &entriesLog,
		Timeout:    cfg.DatabaseTimeout,
	}
	routerCfg := httpAdapter.RouterConfig{
		Logger:           log,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		IdempotencyClaim: cfg.IdempotencyPendingTTL,
	}
	if redisClient != nil {
		ucCfg.Cache = redisRepo.NewCache(redisClient)
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	entryUC := usecase.NewEntryUseCase(ucCfg)
	defer entryUC.Close()

	routerCfg.EntryHandler = handler.NewEntryHandler(entryUC)
	routerCfg.SummaryHandler = handler.NewSummaryHandler(entryUC)
	routerCfg.StreamHandler = handler.NewStreamHandler(entryUC.Feed(), m.FeedSubscribers)
	routerCfg.HealthHandler = handler.NewHealthHandler(entryUC, cfg.StorageDriver, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	// event streams never go idle on their own
	server.RegisterOnShutdown(routerCfg.StreamHandler.Close)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return eventPublisher.Start(gctx)
	})

	g.Go(func() error {
		return routerCfg.RateLimiter.Run(gctx, limiterCleanupInterval)
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
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

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore connects the configured ledger store, applies migrations and
// seeds a freshly created schema.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (entryStore, func(), error) {
	var (
		store   entryStore
		closeFn func()
		fresh   bool
		err     error
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		fresh, err = postgres.RunMigrations(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}

		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		store = postgresRepo.NewEntryRepository(pool, postgresRepo.NewRetrier(log))
		closeFn = pool.Close

	default:
		fresh, err = sqlite.RunMigrations(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}

		var db *sql.DB
		db, err = sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLitePath, BusyTimeout: cfg.SQLiteBusy})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")

		store = sqliteRepo.NewEntryRepository(db, sqliteRepo.NewRetrier(log))
		closeFn = func() { db.Close() }
	}

	if fresh && cfg.SeedSampleData {
		samples := domain.SampleEntries(time.Now().UnixMilli())
		if err := store.Seed(ctx, samples); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("seed sample entries: %w", err)
		}
		log.Info().Int("count", len(samples)).Msg("seeded sample entries")
	}

	return store, closeFn, nil
}

// newPublisher builds the change-event sink selected by EVENTS_PUBLISHER.
func newPublisher(cfg *config.Config, redisClient goredis.UniversalClient, log zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	noop := func() {}

	switch cfg.EventsPublisher {
	case config.PublisherRedis:
		if redisClient == nil {
			return nil, nil, errors.New("redis publisher requires REDIS_URL")
		}
		return eventpublisher.NewRedisPublisher(redisClient, cfg.EventsChannel), noop, nil

	case config.PublisherAMQP:
		p, err := eventpublisher.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to amqp: %w", err)
		}
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("close amqp publisher")
			}
		}, nil

	case config.PublisherNone:
		return discardPublisher{}, noop, nil

	default:
		return eventpublisher.NewLogPublisher(log), noop, nil
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, *domain.ChangeEvent) error { return nil }
