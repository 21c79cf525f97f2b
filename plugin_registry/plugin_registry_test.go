package plugin_registry_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/serisow/docqa/config"
	"github.com/serisow/docqa/logging"
	"github.com/serisow/docqa/plugin_registry"
	"github.com/serisow/docqa/services/llm_service"
)

func TestRegisterAndGetBackend(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry()

	mock := &llm_service.MockLLMService{}
	registry.RegisterBackend("mock", func(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
		return mock, nil
	})

	backend, err := registry.NewBackend(context.Background(), "mock", config.Config{}, logging.Discard())
	if err != nil {
		t.Fatalf("Expected to build backend, got error: %v", err)
	}
	if backend != mock {
		t.Errorf("Expected the registered backend, got %v", backend)
	}
}

func TestGetUnregisteredBackend(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry()

	_, err := registry.NewBackend(context.Background(), "openai", config.Config{}, logging.Discard())
	if err == nil {
		t.Fatal("Expected error when building unregistered backend, got nil")
	}

	expectedErrorMsg := "unknown model backend: openai"
	if err.Error() != expectedErrorMsg {
		t.Errorf("Expected error '%s', got '%s'", expectedErrorMsg, err.Error())
	}
}

func TestFactoryErrorIsReturned(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry()
	boom := errors.New("no credentials")
	registry.RegisterBackend("broken", func(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
		return nil, boom
	})

	_, err := registry.NewBackend(context.Background(), "broken", config.Config{}, logging.Discard())
	if !errors.Is(err, boom) {
		t.Errorf("Expected factory error, got %v", err)
	}
}

func TestDefaultBackends(t *testing.T) {
	registry := plugin_registry.Default()

	names := registry.Backends()
	if len(names) != 2 || names[0] != "gemini" || names[1] != "vertex" {
		t.Fatalf("Expected [gemini vertex], got %v", names)
	}

	backend, err := registry.NewBackend(context.Background(), "gemini", config.Config{
		GeminiAPIURL: "http://127.0.0.1:1",
		GoogleAPIKey: "test-key",
	}, logging.Discard())
	if err != nil {
		t.Fatalf("Expected gemini backend, got error: %v", err)
	}
	if _, ok := backend.(*llm_service.GeminiService); !ok {
		t.Errorf("Expected *llm_service.GeminiService, got %T", backend)
	}
}
