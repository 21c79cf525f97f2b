package llm_service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type GatewayConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// Timeout bounds a single generation call. Zero disables it.
	Timeout time.Duration
	// RateLimit is the outbound request budget per second. Zero disables it.
	RateLimit float64
}

// GenerateOptions overrides the configured defaults for one call.
type GenerateOptions struct {
	Temperature *float32
	MaxTokens   *int
}

// Gateway applies defaults and the safety policy to every call and normalizes
// backend results into trimmed text or a *GenerationError. It never retries.
type Gateway struct {
	backend LLMService
	config  GatewayConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewGateway(backend LLMService, config GatewayConfig, logger *slog.Logger) *Gateway {
	g := &Gateway{
		backend: backend,
		config:  config,
		logger:  logger,
	}
	if config.RateLimit > 0 {
		burst := int(config.RateLimit)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return g
}

func (g *Gateway) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := GenerationRequest{
		Model:          g.config.Model,
		Prompt:         prompt,
		Temperature:    g.config.Temperature,
		MaxTokens:      g.config.MaxTokens,
		CandidateCount: 1,
		SafetySettings: DefaultSafetySettings(),
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Error("Rate limiter wait failed", slog.String("error", err.Error()))
			return "", &GenerationError{Kind: Failed, Reason: err.Error(), Err: err}
		}
	}

	g.logger.Debug("Generating text",
		slog.String("model", req.Model),
		slog.Int("prompt_length", len(prompt)),
		slog.Float64("temperature", float64(req.Temperature)),
		slog.Int("max_tokens", req.MaxTokens))

	start := time.Now()
	text, err := g.backend.CallLLM(ctx, req)
	if err != nil {
		g.logger.Error("Text generation failed",
			slog.String("model", req.Model),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", &GenerationError{Kind: Failed, Reason: err.Error(), Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Warn("Empty response from model", slog.String("model", req.Model))
		return "", &GenerationError{Kind: EmptyResponse}
	}

	g.logger.Info("Text generated",
		slog.String("model", req.Model),
		slog.Int("response_length", len(text)),
		slog.Duration("elapsed", time.Since(start)))

	return text, nil
}
