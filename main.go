package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/serisow/docqa/config"
	"github.com/serisow/docqa/logging"
	"github.com/serisow/docqa/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the logger
	logger, closer, err := logging.NewLogger(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting AI Document Q&A System",
		slog.String("environment", cfg.Environment),
		slog.Bool("debug", cfg.Debug))

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	if cfg.Environment == "production" {
		err = server.ServeProduction(app.Handler, app.Config, logger)
	} else {
		err = server.ServeDevelopment(ctx, app.Handler, app.Config, logger)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Shutting down AI Document Q&A System")
}
