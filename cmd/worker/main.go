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

	"github.com/kirillkom/faq-assistant/internal/bootstrap"
	"github.com/kirillkom/faq-assistant/internal/config"
	"github.com/kirillkom/faq-assistant/internal/observability/logging"
	"github.com/kirillkom/faq-assistant/internal/observability/metrics"
)

const serviceName = "faq-worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	if cfg.NATSURL == "" || cfg.PostgresDSN == "" {
		slog.Error("worker_misconfigured", "error", "NATS_URL and POSTGRES_DSN are required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Service:    serviceName,
		Registerer: workerMetrics.Registerer(),
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", workerMetrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := app.WatchTraining(ctx); err != nil {
			slog.Error("training_watch_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSDocumentSubject)
	if err := app.ServeDocumentJobs(ctx, workerMetrics); err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
