// Command ingestion starts the record ingestion HTTP service.
//
// The service accepts new records via POST /api/v1/records, validates them,
// audits them in PostgreSQL, and publishes them to a Kafka topic for the
// searcher to index. Health endpoints live under /health.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/ingestion.yaml]
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

	"github.com/recorddex/recorddex/internal/ingestion/handler"
	"github.com/recorddex/recorddex/internal/ingestion/publisher"
	"github.com/recorddex/recorddex/internal/ingestion/validator"
	"github.com/recorddex/recorddex/pkg/config"
	"github.com/recorddex/recorddex/pkg/health"
	"github.com/recorddex/recorddex/pkg/kafka"
	"github.com/recorddex/recorddex/pkg/logger"
	"github.com/recorddex/recorddex/pkg/middleware"
	"github.com/recorddex/recorddex/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/ingestion.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	// The audit log is optional. Without it ingests still flow, but
	// idempotency keys are not enforced.
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, ingest auditing disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
		slog.Info("connected to postgres")
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RecordIngest)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.RecordIngest)

	pub := publisher.New(producer, db)
	h := handler.New(validator.New(cfg.Ingestion), pub)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/records", h.Ingest)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
