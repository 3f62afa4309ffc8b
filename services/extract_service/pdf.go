package extract_service

import (
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"docqa/qa_type"
)

type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	return &PDFExtractor{
		logger: logger,
	}
}

func (e *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}

func (e *PDFExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		e.logger.Error("Failed to open PDF",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to open PDF %s: %v", path, err)
	}
	defer file.Close()

	totalPage := reader.NumPage()
	e.logger.Debug("Starting PDF text extraction",
		slog.String("path", path),
		slog.Int("total_pages", totalPage))

	var pages []qa_type.PageRecord
	totalText := 0
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.String("path", path),
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to extract text from page %d: %v", pageIndex, err)
		}

		e.logger.Debug("Extracted text from page",
			slog.Int("page_number", pageIndex),
			slog.Int("text_length", len(text)))

		totalText += len(text)
		pages = append(pages, qa_type.PageRecord{
			Source: path,
			Page:   pageIndex,
			Text:   text,
		})
	}

	if totalText == 0 {
		e.logger.Error("No text extracted from PDF",
			slog.String("path", path),
			slog.Int("total_pages", totalPage))
		return nil, fmt.Errorf("no text content extracted from PDF")
	}

	e.logger.Info("Successfully extracted text from PDF",
		slog.String("path", path),
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", totalText))

	return pages, nil
}
