package extract_service

import (
	"fmt"
	"log/slog"
	"os"

	"docqa/qa_type"
)

type TextExtractor struct {
	logger *slog.Logger
}

func NewTextExtractor(logger *slog.Logger) *TextExtractor {
	return &TextExtractor{
		logger: logger,
	}
}

func (e *TextExtractor) Extensions() []string {
	return []string{".txt"}
}

func (e *TextExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text document %s: %w", path, err)
	}

	if len(data) == 0 {
		e.logger.Error("No text extracted from plain text document",
			slog.String("path", path))
		return nil, fmt.Errorf("no text content extracted from plain text document")
	}

	e.logger.Info("Read plain text document",
		slog.String("path", path),
		slog.Int("text_length", len(data)))

	return []qa_type.PageRecord{{Source: path, Page: 1, Text: string(data)}}, nil
}
