package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"

	"docqa/plugin_registry"
	"docqa/qa_type"
	"docqa/services/embedding_service"
	"docqa/services/extract_service"
	"docqa/services/index_service"
)

const previewLength = 250

// Processor runs the ingestion pipeline for one document: extract
// text and images, chunk, embed and index.
type Processor struct {
	registry  *plugin_registry.PluginRegistry
	images    *extract_service.ImageExtractor
	describer embedding_service.Describer
	embedder  embeddings.Embedder
	index     *index_service.Index
	chunker   *Chunker
	imagesDir string
	logger    *slog.Logger
}

func NewProcessor(
	registry *plugin_registry.PluginRegistry,
	images *extract_service.ImageExtractor,
	describer embedding_service.Describer,
	embedder embeddings.Embedder,
	index *index_service.Index,
	chunker *Chunker,
	imagesDir string,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		registry:  registry,
		images:    images,
		describer: describer,
		embedder:  embedder,
		index:     index,
		chunker:   chunker,
		imagesDir: imagesDir,
		logger:    logger,
	}
}

// ProcessDocument ingests the file at path. Extraction failures come
// back as a failed result rather than an error; failures past
// extraction (embedding, indexing) are errors because they leave the
// index in doubt.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (*qa_type.IngestResult, error) {
	filename := filepath.Base(path)
	metadata := qa_type.DocumentMetadata{
		ContentType: extract_service.ContentType(path),
	}

	extractor, err := p.registry.GetExtractor(extract_service.Ext(path))
	if err != nil {
		return nil, err
	}

	extractStart := time.Now()
	pages, err := extractor.Extract(path)
	if err != nil {
		p.logger.Error("Text extraction failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))

		return &qa_type.IngestResult{
			Message:  "Failed to extract text from document",
			Document: filename,
			Status:   "failed",
			Error:    err.Error(),
			Metadata: metadata,
		}, nil
	}
	metadata.ProcessingStats.ExtractionTime = time.Since(extractStart).Seconds()
	metadata.PageCount = len(pages)

	// Citations carry the document name, not the storage path the
	// extractor happened to read from.
	for i := range pages {
		pages[i].Source = filename
	}

	var fullText strings.Builder
	for _, page := range pages {
		fullText.WriteString(page.Text)
		fullText.WriteString(" ")
	}
	text := fullText.String()
	metadata.WordCount = len(strings.Fields(text))
	if len(text) > previewLength {
		metadata.ContentPreview = text[:previewLength] + "..."
	} else {
		metadata.ContentPreview = text
	}

	chunks := p.chunker.ChunkPages(pages)
	chunks = append(chunks, p.imageChunks(ctx, path)...)
	for _, chunk := range chunks {
		if chunk.Kind == qa_type.KindImage {
			metadata.ImageCount++
		}
	}

	if len(chunks) == 0 {
		return &qa_type.IngestResult{
			Message:  "Document contained no indexable content",
			Document: filename,
			Status:   "failed",
			Error:    "no indexable content",
			Metadata: metadata,
		}, nil
	}

	embedStart := time.Now()
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	metadata.ProcessingStats.EmbeddingTime = time.Since(embedStart).Seconds()

	indexStart := time.Now()
	if err := p.index.AddChunks(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("failed to index document: %w", err)
	}
	metadata.ProcessingStats.IndexingTime = time.Since(indexStart).Seconds()
	metadata.ChunkCount = len(chunks)

	p.logger.Info("Document processed",
		slog.String("filename", filename),
		slog.Int("page_count", metadata.PageCount),
		slog.Int("chunk_count", metadata.ChunkCount),
		slog.Int("image_count", metadata.ImageCount),
		slog.Int("index_size", p.index.Count()))

	return &qa_type.IngestResult{
		Message:  "Document processed successfully",
		Document: filename,
		Status:   "indexed",
		Metadata: metadata,
	}, nil
}

// imageChunks extracts and describes embedded images. Image failures
// never abort ingestion; the text of the document is still worth
// indexing.
func (p *Processor) imageChunks(ctx context.Context, path string) []qa_type.Chunk {
	if extract_service.Ext(path) != ".pdf" || p.images == nil || p.describer == nil {
		return nil
	}

	imagePaths, err := p.images.ExtractImages(path, p.imagesDir)
	if err != nil {
		p.logger.Warn("Image extraction failed, continuing with text only",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}

	docBase := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var chunks []qa_type.Chunk
	for i, imagePath := range imagePaths {
		description, err := p.describer.DescribeImage(ctx, imagePath)
		if err != nil {
			p.logger.Warn("Image description failed, skipping image",
				slog.String("image", imagePath),
				slog.String("error", err.Error()))
			continue
		}

		chunks = append(chunks, qa_type.Chunk{
			Content: description,
			Source:  filepath.Base(path),
			Page:    imagePageNumber(imagePath, docBase),
			Ordinal: i + 1,
			Kind:    qa_type.KindImage,
		})
	}
	return chunks
}

// imagePageNumber recovers the page number encoded in extracted image
// names such as report_2_Im1.png. Zero means the page is unknown.
func imagePageNumber(imagePath, docBase string) int {
	name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	rest := strings.TrimPrefix(name, docBase+"_")
	if i := strings.IndexByte(rest, '_'); i > 0 {
		if page, err := strconv.Atoi(rest[:i]); err == nil {
			return page
		}
	}
	return 0
}
