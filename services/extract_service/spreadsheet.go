package extract_service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"docqa/qa_type"
)

type SpreadsheetExtractor struct {
	logger *slog.Logger
}

func NewSpreadsheetExtractor(logger *slog.Logger) *SpreadsheetExtractor {
	return &SpreadsheetExtractor{
		logger: logger,
	}
}

func (e *SpreadsheetExtractor) Extensions() []string {
	return []string{".xlsx"}
}

// Extract returns one page record per sheet. Cells are joined with
// tabs and rows with newlines, with the sheet name on the first line
// so citations identify the sheet.
func (e *SpreadsheetExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		e.logger.Error("Failed to open spreadsheet",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to open spreadsheet %s: %v", path, err)
	}
	defer file.Close()

	var pages []qa_type.PageRecord
	totalText := 0
	for i, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			e.logger.Error("Failed to read sheet",
				slog.String("path", path),
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to read sheet %s: %v", sheet, err)
		}

		var sb strings.Builder
		sb.WriteString(sheet)
		for _, row := range rows {
			sb.WriteString("\n")
			sb.WriteString(strings.Join(row, "\t"))
		}

		text := sb.String()
		totalText += len(rows)
		pages = append(pages, qa_type.PageRecord{
			Source: path,
			Page:   i + 1,
			Text:   text,
		})
	}

	if totalText == 0 {
		e.logger.Error("No rows extracted from spreadsheet",
			slog.String("path", path))
		return nil, fmt.Errorf("no text content extracted from spreadsheet")
	}

	e.logger.Info("Successfully extracted text from spreadsheet",
		slog.String("path", path),
		slog.Int("sheet_count", len(pages)))

	return pages, nil
}
