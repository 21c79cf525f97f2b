package llm_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serisow/docqa/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() GatewayConfig {
	return GatewayConfig{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}

func TestGateway_AppliesDefaults(t *testing.T) {
	var got GenerationRequest
	mock := &MockLLMService{
		CallLLMFunc: func(ctx context.Context, req GenerationRequest) (string, error) {
			got = req
			return "ok", nil
		},
	}

	g := NewGateway(mock, defaultConfig(), logging.Discard())
	_, err := g.Generate(context.Background(), "hello", GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", got.Model)
	assert.Equal(t, "hello", got.Prompt)
	assert.Equal(t, float32(0.7), got.Temperature)
	assert.Equal(t, 2048, got.MaxTokens)
	assert.Equal(t, 1, got.CandidateCount)
	assert.Equal(t, DefaultSafetySettings(), got.SafetySettings)
	assert.Len(t, got.SafetySettings, 4)
	for _, s := range got.SafetySettings {
		assert.Equal(t, BlockMediumAndAbove, s.Threshold)
	}
}

func TestGateway_Overrides(t *testing.T) {
	var got GenerationRequest
	mock := &MockLLMService{
		CallLLMFunc: func(ctx context.Context, req GenerationRequest) (string, error) {
			got = req
			return "ok", nil
		},
	}

	temp := float32(0.3)
	maxTokens := 256
	g := NewGateway(mock, defaultConfig(), logging.Discard())
	_, err := g.Generate(context.Background(), "p", GenerateOptions{Temperature: &temp, MaxTokens: &maxTokens})
	require.NoError(t, err)

	assert.Equal(t, float32(0.3), got.Temperature)
	assert.Equal(t, 256, got.MaxTokens)
}

func TestGateway_Results(t *testing.T) {
	backendErr := errors.New("connection reset by peer")

	tests := []struct {
		name     string
		response string
		err      error
		want     string
		wantKind GenerationKind
	}{
		{name: "trimmed", response: "  Short summary.\n", want: "Short summary."},
		{name: "empty", response: "", wantKind: EmptyResponse},
		{name: "whitespace only", response: " \n\t ", wantKind: EmptyResponse},
		{name: "backend error", err: backendErr, wantKind: Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			mock := &MockLLMService{
				CallLLMFunc: func(ctx context.Context, req GenerationRequest) (string, error) {
					calls++
					return tt.response, tt.err
				},
			}

			g := NewGateway(mock, defaultConfig(), logging.Discard())
			text, err := g.Generate(context.Background(), "prompt", GenerateOptions{})

			assert.Equal(t, 1, calls, "exactly one attempt")
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.True(t, IsGenerationKind(err, tt.wantKind), "got %v", err)
				assert.Empty(t, text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestGateway_FailedCarriesReason(t *testing.T) {
	backendErr := &GeminiHttpError{StatusCode: 503, Message: "model overloaded", Status: "UNAVAILABLE"}
	mock := &MockLLMService{
		CallLLMFunc: func(ctx context.Context, req GenerationRequest) (string, error) {
			return "", backendErr
		},
	}

	g := NewGateway(mock, defaultConfig(), logging.Discard())
	_, err := g.Generate(context.Background(), "prompt", GenerateOptions{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, Failed, genErr.Kind)
	assert.Contains(t, genErr.Reason, "model overloaded")
	assert.ErrorIs(t, err, backendErr)
}

func TestGateway_Timeout(t *testing.T) {
	mock := &MockLLMService{
		CallLLMFunc: func(ctx context.Context, req GenerationRequest) (string, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)

			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	cfg := defaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	g := NewGateway(mock, cfg, logging.Discard())

	_, err := g.Generate(context.Background(), "prompt", GenerateOptions{})
	assert.True(t, IsGenerationKind(err, Failed))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGateway_RateLimitHonoursContext(t *testing.T) {
	calls := 0
	mock := &MockLLMService{
		CallLLMFunc: func(ctx context.Context, req GenerationRequest) (string, error) {
			calls++
			return "ok", nil
		},
	}

	cfg := defaultConfig()
	cfg.RateLimit = 0.001
	g := NewGateway(mock, cfg, logging.Discard())

	_, err := g.Generate(context.Background(), "first", GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Generate(ctx, "second", GenerateOptions{})
	assert.True(t, IsGenerationKind(err, Failed), "got %v", err)
	assert.Equal(t, 1, calls)
}
