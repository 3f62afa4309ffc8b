package embedding_service

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"docqa/config"
)

// Describer captions extracted images so they can be indexed in the
// same vector space as the text chunks.
type Describer interface {
	DescribeImage(ctx context.Context, path string) (string, error)
}

const describePrompt = "Describe this image from a document in two or three sentences. " +
	"Mention any chart type, axis labels, table headers or figures it shows."

// VisionDescriber feeds image bytes to a multimodal model and returns
// its textual description.
type VisionDescriber struct {
	model  llms.Model
	logger *slog.Logger
}

func NewVisionDescriber(cfg config.Config, logger *slog.Logger) (*VisionDescriber, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.OllamaHost),
		ollama.WithModel(cfg.VisionModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vision model client: %w", err)
	}
	return &VisionDescriber{model: llm, logger: logger}, nil
}

func (d *VisionDescriber) DescribeImage(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, data),
				llms.TextPart(describePrompt),
			},
		},
	}

	resp, err := d.model.GenerateContent(ctx, content)
	if err != nil {
		d.logger.Error("Vision model call failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("vision model call failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision model returned no choices")
	}

	description := resp.Choices[0].Content
	d.logger.Debug("Described image",
		slog.String("path", path),
		slog.Int("description_length", len(description)))

	return description, nil
}
