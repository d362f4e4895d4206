package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/faq-assistant/internal/adapters/http"
	"github.com/kirillkom/faq-assistant/internal/bootstrap"
	"github.com/kirillkom/faq-assistant/internal/config"
	"github.com/kirillkom/faq-assistant/internal/observability/logging"
	"github.com/kirillkom/faq-assistant/internal/observability/metrics"
)

const serviceName = "faq-api"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Service:    serviceName,
		Registerer: httpMetrics.Registerer(),
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go func() {
		if err := app.WatchTraining(ctx); err != nil {
			slog.Error("training_watch_failed", "error", err)
		}
	}()
	if app.LocalJobs {
		go func() {
			if err := app.ServeDocumentJobs(ctx, nil); err != nil {
				slog.Error("document_jobs_failed", "error", err)
			}
		}()
	}

	deps := httpadapter.Dependencies{
		Conversation: app.Assistant,
		Knowledge:    app.Assistant,
		Metrics:      httpMetrics,
	}
	if app.IngestUC != nil {
		deps.Ingest = app.IngestUC
		deps.Documents = app.Documents
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      httpadapter.NewRouter(cfg, deps).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "addr", server.Addr, "training_store", cfg.TrainingStore)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
