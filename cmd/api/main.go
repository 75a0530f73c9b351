// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Command api is the entry point for the resource catalogue HTTP API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Load the vocabulary registry.
//  6. Wire the notification pipeline, mirror synchronizer and lifecycle service.
//  7. Start the API and metrics servers with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/api"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/lifecycle"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/mirror"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/vocabulary"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/cache"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/config"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/constants"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/metrics"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/migration"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/notify"
	pgstore "github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/postgres"
	redisstore "github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/redis"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("home_catalogue", cfg.HomeCatalogue),
		slog.String("notify_backend", cfg.NotifyBackend),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL and Redis ───────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	version, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	must(log, err, "run migrations")
	log.Info("schema_ready", slog.Uint64("version", uint64(version)))

	// ── 5. Vocabulary ─────────────────────────────────────────────────────
	registry, err := vocabulary.Load(startupCtx, vocabulary.NewPostgresSource(pool))
	must(log, err, "load vocabulary")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	registerer := prometheus.NewRegistry()
	registerer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registerer)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	sink, closeSink := newSink(cfg, rdb, log)
	defer closeSink()
	dispatcher := notify.NewDispatcher(notify.NewBreakerSink(cfg.NotifyBackend, sink, log), log, m)

	records := record.NewPostgresRepository(pool)
	rewriter := mirror.NewRewriter(records, cfg.PublicBaseURL, cfg.PIDPrefix)
	synchronizer := mirror.NewSynchronizer(records, rewriter, dispatcher, m, log)

	service := lifecycle.NewService(records, registry, synchronizer, cache.NewRedis(rdb, cfg.CacheTTL), m, log, lifecycle.Options{
		HomeCatalogue:  cfg.HomeCatalogue,
		AuditScanLimit: cfg.AuditScanLimit,
	})

	verifier, err := sec.NewVerifier(cfg.JWTPubKeyPath, cfg.JWTIssuer)
	must(log, err, "initialize jwt verifier")

	liveness, readiness := api.NewHealthHandlers(log,
		api.HealthCheck{Name: "postgres", Check: func() error {
			return pgstore.Ping(context.Background(), pool)
		}},
		api.HealthCheck{Name: "redis", Check: func() error {
			return redisstore.Ping(context.Background(), rdb)
		}},
	)

	// ── 7. HTTP Servers ───────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, verifier, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Lifecycle: lifecycle.NewHandler(service),
	})
	metricsServer := api.NewMetricsServer(cfg.MetricsPort, registerer, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 2)
	for _, s := range []*api.Server{server, metricsServer} {
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	exitCode := 0
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		exitCode = 1
	}
	if err := metricsServer.Shutdown(shutdownTimeout); err != nil {
		log.Error("metrics shutdown error", slog.Any("error", err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.Warn("notifications_not_drained", slog.Any("error", err))
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger every entry of this process goes through.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newSink selects the notification transport named by NOTIFY_BACKEND. The
// returned func releases the transport's connections.
func newSink(cfg *config.Config, rdb *redis.Client, log *slog.Logger) (notify.Sink, func()) {
	switch cfg.NotifyBackend {
	case config.NotifyKafka:
		sink, err := notify.NewKafkaSink(cfg.KafkaBrokers, log)
		must(log, err, "connect to kafka")
		return sink, sink.Close
	case config.NotifyLog:
		return notify.NewLogSink(log), func() {}
	default:
		return notify.NewRedisSink(rdb), func() {}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
