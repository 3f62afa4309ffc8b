package extract_service

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"code.sajari.com/docconv/v2"

	"docqa/qa_type"
)

type WordExtractor struct {
	logger *slog.Logger
}

func NewWordExtractor(logger *slog.Logger) *WordExtractor {
	return &WordExtractor{
		logger: logger,
	}
}

func (e *WordExtractor) Extensions() []string {
	return []string{".docx"}
}

// Extract converts the whole document through docconv. Word documents
// have no stable page boundaries before layout, so the text comes back
// as a single page record.
func (e *WordExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Word document %s: %w", path, err)
	}

	e.logger.Debug("Starting Word document text extraction",
		slog.String("path", path),
		slog.Int("data_size", len(data)))

	mimeType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		e.logger.Error("Failed to convert Word document",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to convert Word document: %v", err)
	}

	if len(result.Body) == 0 {
		e.logger.Error("No text extracted from Word document",
			slog.String("path", path))
		return nil, fmt.Errorf("no text content extracted from Word document")
	}

	e.logger.Info("Successfully extracted text from Word document",
		slog.String("path", path),
		slog.Int("text_length", len(result.Body)))

	return []qa_type.PageRecord{{Source: path, Page: 1, Text: result.Body}}, nil
}
