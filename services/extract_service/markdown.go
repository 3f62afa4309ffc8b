package extract_service

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/yuin/goldmark"

	"docqa/qa_type"
)

type MarkdownExtractor struct {
	logger *slog.Logger
}

func NewMarkdownExtractor(logger *slog.Logger) *MarkdownExtractor {
	return &MarkdownExtractor{
		logger: logger,
	}
}

func (e *MarkdownExtractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract renders the markdown to HTML first so tables, links and
// emphasis markers do not leak into the indexed text.
func (e *MarkdownExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown document %s: %w", path, err)
	}

	var rendered bytes.Buffer
	if err := goldmark.Convert(data, &rendered); err != nil {
		e.logger.Error("Failed to render markdown",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to render markdown: %v", err)
	}

	text, err := htmlToText(&rendered)
	if err != nil {
		e.logger.Error("Failed to parse rendered markdown",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to parse rendered markdown: %v", err)
	}

	if len(text) == 0 {
		e.logger.Error("No text extracted from markdown document",
			slog.String("path", path))
		return nil, fmt.Errorf("no text content extracted from markdown document")
	}

	e.logger.Info("Successfully extracted text from markdown document",
		slog.String("path", path),
		slog.Int("text_length", len(text)))

	return []qa_type.PageRecord{{Source: path, Page: 1, Text: text}}, nil
}
