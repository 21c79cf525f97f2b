package plugin_registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/serisow/docqa/config"
	"github.com/serisow/docqa/services/llm_service"
)

// BackendFactory builds a model backend from the process configuration.
type BackendFactory func(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error)

type PluginRegistry struct {
	backends map[string]BackendFactory
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		backends: make(map[string]BackendFactory),
	}
}

// RegisterBackend registers a model backend under name, replacing any previous one.
func (pr *PluginRegistry) RegisterBackend(name string, factory BackendFactory) {
	pr.backends[name] = factory
}

// NewBackend builds the backend registered under name.
func (pr *PluginRegistry) NewBackend(ctx context.Context, name string, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
	factory, ok := pr.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown model backend: %s", name)
	}
	return factory(ctx, cfg, logger)
}

// Backends lists the registered names in sorted order.
func (pr *PluginRegistry) Backends() []string {
	names := make([]string, 0, len(pr.backends))
	for name := range pr.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default registers the Gemini REST and Vertex AI backends.
func Default() *PluginRegistry {
	pr := NewPluginRegistry()
	pr.RegisterBackend(config.BackendGemini, func(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
		return llm_service.NewGeminiService(cfg.GeminiAPIURL, cfg.GoogleAPIKey, logger), nil
	})
	pr.RegisterBackend(config.BackendVertex, func(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
		svc, err := llm_service.NewVertexService(ctx, cfg.VertexProjectID, cfg.VertexRegion, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		return svc, nil
	})
	return pr
}
