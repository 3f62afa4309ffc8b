package extract_service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ImageExtractor pulls embedded raster images out of a PDF and writes
// them to disk so the vision model can describe them.
type ImageExtractor struct {
	logger *slog.Logger
}

func NewImageExtractor(logger *slog.Logger) *ImageExtractor {
	return &ImageExtractor{
		logger: logger,
	}
}

// ExtractImages writes every embedded image of the PDF at path into a
// subdirectory of outDir named after the document, overwriting on name
// collision, and returns the sorted paths of the files present there.
// Re-extracting the same document yields the same listing.
func (e *ImageExtractor) ExtractImages(path, outDir string) ([]string, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	docDir := filepath.Join(outDir, base)
	if err := os.MkdirAll(docDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	if err := api.ExtractImagesFile(path, docDir, nil, nil); err != nil {
		e.logger.Error("Failed to extract images",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to extract images from %s: %v", path, err)
	}

	entries, err := os.ReadDir(docDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var written []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		written = append(written, filepath.Join(docDir, entry.Name()))
	}
	sort.Strings(written)

	e.logger.Info("Extracted images from PDF",
		slog.String("path", path),
		slog.Int("image_count", len(written)))

	return written, nil
}
