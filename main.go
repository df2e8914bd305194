package main

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storefront/config"
	"storefront/handler"
	"storefront/metrics"
	"storefront/observability"
	"storefront/outbox"
	"storefront/service"
	"storefront/store"
)

//go:embed migrations.sql
var migrationSQL string

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing (optional) ---
	if cfg.OTelEndpoint != "" {
		shutdown, err := observability.SetupTracing(ctx, cfg.OTelEndpoint)
		if err != nil {
			logger.Fatal("tracing setup failed", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("tracing shutdown", zap.Error(err))
			}
		}()
		logger.Info("tracing enabled", zap.String("endpoint", cfg.OTelEndpoint))
	}

	// --- Database ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database failed", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("ping database failed", zap.Error(err))
	}

	// --- Migrations ---
	if _, err := db.ExecContext(ctx, migrationSQL); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// --- Store ---
	st := &store.PostgresStore{DB: db}

	// --- Service ---
	svc := service.New(service.Deps{
		Store:   st,
		Logger:  logger,
		Metrics: metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
	})

	// --- Handlers ---
	h := handler.NewHandler(svc, logger)

	// --- Router ---
	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)
	r := mux.NewRouter()
	r.Use(handler.RequestLogger(logger), handler.Metrics(serverMetrics))
	h.RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	// --- Outbox relay ---
	if len(cfg.KafkaBrokers) > 0 {
		writer := outbox.NewWriter(cfg.KafkaBrokers)
		defer writer.Close()
		relay := &outbox.Relay{
			DB:       db,
			Writer:   writer,
			Logger:   logger,
			Interval: cfg.OutboxInterval,
			Batch:    cfg.OutboxBatch,
		}
		go relay.Run(ctx)
		logger.Info("outbox relay started", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("no kafka brokers configured, order events stay queued in outbox")
	}

	// --- Server ---
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
