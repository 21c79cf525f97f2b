package llm_service

import (
	"context"
)

// LLMService is a single remote model backend. Implementations make exactly one
// attempt per call.
type LLMService interface {
	CallLLM(ctx context.Context, req GenerationRequest) (string, error)
}

type GenerationRequest struct {
	Model          string
	Prompt         string
	Temperature    float32
	MaxTokens      int
	CandidateCount int
	SafetySettings []SafetySetting
}

// SafetySetting uses the Gemini API enum names for both fields.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

const (
	HarmCategoryHateSpeech       = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategoryDangerousContent = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmCategorySexuallyExplicit = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryHarassment       = "HARM_CATEGORY_HARASSMENT"

	BlockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
)

// DefaultSafetySettings is the policy applied to every generation call.
func DefaultSafetySettings() []SafetySetting {
	return []SafetySetting{
		{Category: HarmCategoryHateSpeech, Threshold: BlockMediumAndAbove},
		{Category: HarmCategoryDangerousContent, Threshold: BlockMediumAndAbove},
		{Category: HarmCategorySexuallyExplicit, Threshold: BlockMediumAndAbove},
		{Category: HarmCategoryHarassment, Threshold: BlockMediumAndAbove},
	}
}
