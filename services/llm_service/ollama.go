package llm_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaService talks to a local ollama server. It is the default
// provider since it needs no API key.
type OllamaService struct {
	logger *slog.Logger
}

func NewOllamaService(logger *slog.Logger) *OllamaService {
	return &OllamaService{
		logger: logger,
	}
}

func (s *OllamaService) CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
	serverURL, ok := config["server_url"].(string)
	if !ok {
		return "", fmt.Errorf("server_url not found in config")
	}

	modelName, ok := config["model_name"].(string)
	if !ok {
		return "", fmt.Errorf("model_name not found in config")
	}

	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(modelName),
	)
	if err != nil {
		return "", fmt.Errorf("failed to initialize ollama client: %w", err)
	}

	s.logger.Debug("Calling ollama",
		slog.String("model", modelName),
		slog.Int("prompt_length", len(prompt)))

	response, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt)
	if err != nil {
		s.logger.Error("Ollama call failed",
			slog.String("model", modelName),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to call ollama: %v", err)
	}

	return response, nil
}
