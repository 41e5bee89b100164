package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/recorddex/recorddex/internal/analytics"
	"github.com/recorddex/recorddex/internal/searcher/cache"
	"github.com/recorddex/recorddex/internal/searcher/consumer"
	"github.com/recorddex/recorddex/internal/searcher/handler"
	"github.com/recorddex/recorddex/internal/store"
	"github.com/recorddex/recorddex/pkg/config"
	"github.com/recorddex/recorddex/pkg/health"
	"github.com/recorddex/recorddex/pkg/kafka"
	"github.com/recorddex/recorddex/pkg/logger"
	"github.com/recorddex/recorddex/pkg/metrics"
	"github.com/recorddex/recorddex/pkg/middleware"
	"github.com/recorddex/recorddex/pkg/postgres"
	pkgredis "github.com/recorddex/recorddex/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recordStore := store.New()
	slog.Info("record store initialized",
		"index_capacity", recordStore.Snapshot().IndexCapacity,
	)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	m := metrics.New()
	var stopMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		stopMetrics = metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			if err := stopMetrics(context.Background()); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, cfg.Analytics.BufferSize)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	applier := consumer.NewRecordApplier(recordStore, queryCache, collector, m)
	recordConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RecordIngest, applier.Handle)
	go func() {
		if err := recordConsumer.Start(ctx); err != nil {
			slog.Error("record consumer error", "error", err)
		}
	}()
	slog.Info("record consumer started", "topic", cfg.Kafka.Topics.RecordIngest)

	aggregator := analytics.NewAggregator()
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := analyticsConsumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)
	slog.Info("analytics aggregator started")

	if pg, err := postgres.New(cfg.Postgres); err != nil {
		slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
	} else {
		defer pg.Close()
		snapshots := analytics.NewSnapshotStore(pg)
		go snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		slog.Info("analytics snapshots enabled", "interval", cfg.Analytics.SnapshotInterval)
	}

	checker := health.NewChecker()
	checker.Register("store", func(ctx context.Context) health.ComponentHealth {
		snap := recordStore.Snapshot()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d records indexed", snap.Records),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(recordStore, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/records/{key}", h.SearchByID)
	mux.HandleFunc("GET /api/v1/records", h.AllRecords)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	limiter := middleware.NewRateLimiter(cfg.Search.RateLimit, cfg.Search.RateLimitWindow)
	var chain http.Handler = mux
	chain = middleware.RateLimit(limiter)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
