package llm_service

import (
	"context"
)

// MockLLMService records the prompts it receives so tests can assert
// on the rendered prompt content.
type MockLLMService struct {
	CallLLMFunc func(ctx context.Context, config map[string]interface{}, prompt string) (string, error)
	Prompts     []string
}

func (m *MockLLMService) CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, config, prompt)
	}
	return "mock response", nil
}
