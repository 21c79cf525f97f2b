package llm_service

import (
	"context"
)

type MockLLMService struct {
	CallLLMFunc func(ctx context.Context, req GenerationRequest) (string, error)
}

func (m *MockLLMService) CallLLM(ctx context.Context, req GenerationRequest) (string, error) {
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, req)
	}
	return "mock response", nil
}
