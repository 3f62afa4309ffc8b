package llm_service

import (
	"context"
	"strconv"

	"docqa/config"
)

// LLMService generates an answer for a fully rendered prompt. The
// config map carries provider specifics (endpoint, key, model) so one
// answering chain can swap providers without recompiling.
type LLMService interface {
	CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error)
}

// ConfigFromEnv builds the call config consumed by CallLLM
// implementations out of the process configuration.
func ConfigFromEnv(cfg config.Config) map[string]interface{} {
	callConfig := map[string]interface{}{
		"service":    cfg.LLMProvider,
		"model_name": cfg.ChatModel,
		"parameters": map[string]interface{}{
			"max_tokens": 1024,
		},
	}

	switch cfg.LLMProvider {
	case "openai":
		callConfig["api_url"] = cfg.OpenAIAPIURL
		callConfig["api_key"] = cfg.OpenAIAPIKey
	case "anthropic":
		callConfig["api_url"] = cfg.AnthropicAPIURL
		callConfig["api_key"] = cfg.AnthropicAPIKey
	default:
		callConfig["server_url"] = cfg.OllamaHost
	}

	return callConfig
}

// Helper function to safely parse float values from loosely typed
// call configs.
func safeParseFloat(value interface{}, defaultValue float64) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return defaultValue
}
