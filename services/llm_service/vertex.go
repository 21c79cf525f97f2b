package llm_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// VertexService calls Gemini through Vertex AI using application default credentials.
type VertexService struct {
	client *genai.Client
	logger *slog.Logger
}

func NewVertexService(ctx context.Context, projectID, region string, logger *slog.Logger) (*VertexService, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexService: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexService{
		client: client,
		logger: logger,
	}, nil
}

func (s *VertexService) CallLLM(ctx context.Context, req GenerationRequest) (string, error) {
	model := s.client.GenerativeModel(req.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: genai.Ptr(int32(req.MaxTokens)),
		CandidateCount:  genai.Ptr(int32(req.CandidateCount)),
	}
	model.SafetySettings = vertexSafetySettings(req.SafetySettings)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		s.logger.Error("Call to Vertex AI failed",
			slog.String("model", req.Model),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	return responseText(resp), nil
}

func (s *VertexService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

var vertexCategories = map[string]genai.HarmCategory{
	HarmCategoryHateSpeech:       genai.HarmCategoryHateSpeech,
	HarmCategoryDangerousContent: genai.HarmCategoryDangerousContent,
	HarmCategorySexuallyExplicit: genai.HarmCategorySexuallyExplicit,
	HarmCategoryHarassment:       genai.HarmCategoryHarassment,
}

var vertexThresholds = map[string]genai.HarmBlockThreshold{
	BlockMediumAndAbove:   genai.HarmBlockMediumAndAbove,
	"BLOCK_LOW_AND_ABOVE": genai.HarmBlockLowAndAbove,
	"BLOCK_ONLY_HIGH":     genai.HarmBlockOnlyHigh,
	"BLOCK_NONE":          genai.HarmBlockNone,
}

// vertexSafetySettings drops settings whose names have no Vertex equivalent.
func vertexSafetySettings(settings []SafetySetting) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		category, ok := vertexCategories[s.Category]
		if !ok {
			continue
		}
		threshold, ok := vertexThresholds[s.Threshold]
		if !ok {
			continue
		}
		out = append(out, &genai.SafetySetting{Category: category, Threshold: threshold})
	}
	return out
}
