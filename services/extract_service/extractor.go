package extract_service

import (
	"path/filepath"
	"strings"

	"docqa/qa_type"
)

// Extractor turns one source document into per-page text records.
// Formats without a native page structure return a single record.
type Extractor interface {
	Extract(path string) ([]qa_type.PageRecord, error)
	// Extensions lists the lower-case file extensions the extractor
	// accepts, dot included.
	Extensions() []string
}

// Ext returns the normalized extension used for extractor lookup.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func ContentType(path string) string {
	switch Ext(path) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
