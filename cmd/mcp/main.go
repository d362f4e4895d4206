package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/faq-assistant/internal/adapters/mcp"
	"github.com/kirillkom/faq-assistant/internal/bootstrap"
	"github.com/kirillkom/faq-assistant/internal/config"
	"github.com/kirillkom/faq-assistant/internal/observability/logging"
)

const serviceName = "faq-mcp"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Service: serviceName})
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

	s := mcpadapter.NewServer(mcpadapter.NewTools(app.Assistant, app.Assistant))
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
