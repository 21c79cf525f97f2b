package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/serisow/docqa/config"
	"github.com/serisow/docqa/handlers"
	"github.com/serisow/docqa/plugin_registry"
	"github.com/serisow/docqa/services/llm_service"
	"github.com/serisow/docqa/services/pdf_service"
	"github.com/serisow/docqa/services/qa_service"
)

// App is the fully wired HTTP service.
type App struct {
	Handler http.Handler
	Config  Config

	closers []io.Closer
}

// NewApp builds every component once from cfg. Components are read-only afterwards.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	extractor, err := pdf_service.NewExtractor(pdf_service.NewLedongthucBackend(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text extractor: %w", err)
	}

	app := &App{}

	backend, err := newModelBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if c, ok := backend.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	gateway := llm_service.NewGateway(backend, llm_service.GatewayConfig{
		Model:       cfg.GeminiModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.ModelTimeout,
		RateLimit:   cfg.ModelRateLimit,
	}, logger)

	pipeline := qa_service.NewPipeline(extractor, gateway, logger)

	h := handlers.NewQAHandler(pipeline, extractor, handlers.Config{
		AppName:        cfg.AppName,
		AppVersion:     cfg.AppVersion,
		Debug:          cfg.Debug,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, logger)

	app.Handler = SetupNegroni(SetupRoutes(h), logger)
	app.Config = Config{
		Addr:            cfg.Addr(),
		Domains:         cfg.Domains,
		CertCacheDir:    cfg.CertCacheDir,
		IdleTimeout:     time.Minute,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    writeTimeout(cfg.ModelTimeout),
		ShutdownTimeout: 30 * time.Second,
	}

	logger.Info("Application initialized",
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.AppVersion),
		slog.String("model_backend", cfg.ModelBackend),
		slog.String("model", cfg.GeminiModel))

	return app, nil
}

func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writeTimeout leaves room past the model deadline for extraction and the response.
// Zero disables it, matching a disabled model timeout.
func writeTimeout(modelTimeout time.Duration) time.Duration {
	if modelTimeout <= 0 {
		return 0
	}
	return modelTimeout + 30*time.Second
}

func newModelBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
	return plugin_registry.Default().NewBackend(ctx, cfg.ModelBackend, cfg, logger)
}
