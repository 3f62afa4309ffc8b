package extract_service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"docqa/qa_type"
)

type HTMLExtractor struct {
	logger *slog.Logger
}

func NewHTMLExtractor(logger *slog.Logger) *HTMLExtractor {
	return &HTMLExtractor{
		logger: logger,
	}
}

func (e *HTMLExtractor) Extensions() []string {
	return []string{".html", ".htm"}
}

func (e *HTMLExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML document %s: %w", path, err)
	}
	defer file.Close()

	text, err := htmlToText(file)
	if err != nil {
		e.logger.Error("Failed to parse HTML document",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to parse HTML document: %v", err)
	}

	if len(text) == 0 {
		e.logger.Error("No text extracted from HTML document",
			slog.String("path", path))
		return nil, fmt.Errorf("no text content extracted from HTML document")
	}

	e.logger.Info("Successfully extracted text from HTML document",
		slog.String("path", path),
		slog.Int("text_length", len(text)))

	return []qa_type.PageRecord{{Source: path, Page: 1, Text: text}}, nil
}

// htmlToText strips markup, scripts and styles and collapses the
// whitespace runs left behind by block elements.
func htmlToText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
