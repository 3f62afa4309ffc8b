package embedding_service

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docqa/config"
)

// NewEmbedder builds the sentence embedder for the configured
// provider. The returned embeddings.Embedder is what the processor and
// the answering chain share, so every text and every question lands in
// the same vector space.
func NewEmbedder(cfg config.Config) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	default:
		return NewOllamaEmbedder(cfg.OllamaHost, cfg.EmbeddingModel)
	}
}

func NewOllamaEmbedder(serverURL, model string) (embeddings.Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func NewOpenAIEmbedder(apiKey, model string) (embeddings.Embedder, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}
