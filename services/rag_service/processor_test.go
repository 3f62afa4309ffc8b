package rag_service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/embeddings"

	"docqa/plugin_registry"
	"docqa/qa_type"
	"docqa/services/extract_service"
	"docqa/services/index_service"
)

type fakeEmbeddingClient struct {
	err error
}

func (f *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1, 0}
	}
	return vectors, nil
}

type failingExtractor struct{}

func (e *failingExtractor) Extract(path string) ([]qa_type.PageRecord, error) {
	return nil, errors.New("file is encrypted")
}

func (e *failingExtractor) Extensions() []string {
	return []string{".bad"}
}

func testProcessor(t *testing.T, embedClient *fakeEmbeddingClient) (*Processor, *index_service.Index) {
	t.Helper()

	registry := plugin_registry.NewPluginRegistry()
	registry.RegisterExtractor(extract_service.NewTextExtractor(testLogger()))
	registry.RegisterExtractor(&failingExtractor{})

	embedder, err := embeddings.NewEmbedder(embedClient)
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}

	idx, err := index_service.OpenInMemory(testLogger())
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}

	chunker, err := NewChunker(32, 8)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	processor := NewProcessor(registry, nil, nil, embedder, idx, chunker, t.TempDir(), testLogger())
	return processor, idx
}

func writeDocFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestProcessDocumentIndexesChunks(t *testing.T) {
	processor, idx := testProcessor(t, &fakeEmbeddingClient{})
	content := strings.Repeat("quarterly revenue figures ", 10)
	path := writeDocFixture(t, "report.txt", content)

	result, err := processor.ProcessDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	if result.Status != "indexed" {
		t.Errorf("status = %q, want indexed", result.Status)
	}
	if result.Document != "report.txt" {
		t.Errorf("document = %q", result.Document)
	}

	metadata := result.Metadata
	if metadata.PageCount != 1 {
		t.Errorf("page count = %d, want 1", metadata.PageCount)
	}
	if metadata.ChunkCount == 0 {
		t.Error("chunk count is zero")
	}
	if metadata.WordCount != 30 {
		t.Errorf("word count = %d, want 30", metadata.WordCount)
	}
	if metadata.ContentType != "text/plain" {
		t.Errorf("content type = %q", metadata.ContentType)
	}
	if !strings.HasSuffix(metadata.ContentPreview, "...") {
		t.Errorf("preview not truncated: %q", metadata.ContentPreview)
	}
	if metadata.ProcessingStats.ExtractionTime < 0 {
		t.Errorf("extraction time = %f", metadata.ProcessingStats.ExtractionTime)
	}

	if idx.Count() != metadata.ChunkCount {
		t.Errorf("index holds %d chunks, metadata says %d", idx.Count(), metadata.ChunkCount)
	}
}

func TestProcessDocumentUnsupportedType(t *testing.T) {
	processor, _ := testProcessor(t, &fakeEmbeddingClient{})
	path := writeDocFixture(t, "archive.zip", "binary junk")

	_, err := processor.ProcessDocument(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for unsupported type, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("error = %v", err)
	}
}

func TestProcessDocumentExtractionFailureIsSoft(t *testing.T) {
	processor, idx := testProcessor(t, &fakeEmbeddingClient{})
	path := writeDocFixture(t, "locked.bad", "does not matter")

	result, err := processor.ProcessDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessDocument returned hard error: %v", err)
	}
	if result.Status != "failed" {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if !strings.Contains(result.Error, "encrypted") {
		t.Errorf("result error = %q", result.Error)
	}
	if idx.Count() != 0 {
		t.Errorf("index holds %d chunks after failed extraction", idx.Count())
	}
}

func TestProcessDocumentEmbeddingFailure(t *testing.T) {
	processor, _ := testProcessor(t, &fakeEmbeddingClient{err: errors.New("embedding model offline")})
	path := writeDocFixture(t, "report.txt", "some text to embed")

	_, err := processor.ProcessDocument(context.Background(), path)
	if err == nil {
		t.Fatal("expected embedding error, got nil")
	}
	if !strings.Contains(err.Error(), "embedding model offline") {
		t.Errorf("error = %v", err)
	}
}

func TestImagePageNumber(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		docBase string
		want    int
	}{
		{name: "simple", path: "report_2_Im1.png", docBase: "report", want: 2},
		{name: "two digit page", path: "report_12_Im0.jpg", docBase: "report", want: 12},
		{name: "base with underscore", path: "q3_report_4_Im2.png", docBase: "q3_report", want: 4},
		{name: "unparseable", path: "picture.png", docBase: "report", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imagePageNumber(tt.path, tt.docBase); got != tt.want {
				t.Errorf("imagePageNumber(%q, %q) = %d, want %d", tt.path, tt.docBase, got, tt.want)
			}
		})
	}
}
