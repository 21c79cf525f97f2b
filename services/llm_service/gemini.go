package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// GeminiService calls the Gemini generateContent REST endpoint with an API key.
// Calls are bounded by the caller's context only; the gateway sets the deadline.
type GeminiService struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	logger     *slog.Logger
}

func NewGeminiService(apiURL, apiKey string, logger *slog.Logger) *GeminiService {
	return &GeminiService{
		httpClient: &http.Client{},
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (s *GeminiService) CallLLM(ctx context.Context, req GenerationRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model name is required")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		s.apiURL, url.PathEscape(req.Model), url.QueryEscape(s.apiKey))

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": req.Prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      req.Temperature,
			"maxOutputTokens":  req.MaxTokens,
			"candidateCount":   req.CandidateCount,
			"responseMimeType": "text/plain",
		},
		"safetySettings": req.SafetySettings,
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		httpErr := extractGeminiErrorDetails(resp)
		s.logger.Error("Gemini API error",
			slog.Int("status_code", httpErr.StatusCode),
			slog.String("status", httpErr.Status),
			slog.String("error_message", httpErr.Message),
			slog.String("model", req.Model))
		return "", httpErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", result.PromptFeedback.BlockReason)
	}

	if len(result.Candidates) == 0 {
		s.logger.Warn("Gemini API returned no candidates", slog.String("model", req.Model))
		return "", nil
	}

	candidate := result.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	if text.Len() == 0 && candidate.FinishReason != "" {
		s.logger.Warn("Gemini candidate has no text",
			slog.String("finish_reason", candidate.FinishReason),
			slog.String("model", req.Model))
	}

	return text.String(), nil
}
