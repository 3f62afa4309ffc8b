package index_service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"docqa/qa_type"
)

const collectionName = "documents"

// Index wraps a chromem-go collection holding one embedding per chunk.
// Entries are only ever added or overwritten under the same ID; there
// is no delete path short of Reset.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *slog.Logger
}

// Open loads or creates a persistent index under dir. The embedding
// function is nil because every document arrives with a precomputed
// embedding.
func Open(dir string, logger *slog.Logger) (*Index, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index at %s: %v", dir, err)
	}
	return newIndex(db, logger)
}

// OpenInMemory creates an index that lives for the process only.
func OpenInMemory(logger *slog.Logger) (*Index, error) {
	return newIndex(chromem.NewDB(), logger)
}

func newIndex(db *chromem.DB, logger *slog.Logger) (*Index, error) {
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %v", collectionName, err)
	}
	return &Index{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

// chunkID is deterministic so re-ingesting a document overwrites its
// previous entries instead of duplicating them.
func chunkID(chunk qa_type.Chunk) string {
	return fmt.Sprintf("%s:%d:%d:%s", chunk.Source, chunk.Page, chunk.Ordinal, chunk.Kind)
}

func (idx *Index) AddChunks(ctx context.Context, chunks []qa_type.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      chunkID(chunk),
			Content: chunk.Content,
			Metadata: map[string]string{
				"source":  chunk.Source,
				"page":    strconv.Itoa(chunk.Page),
				"ordinal": strconv.Itoa(chunk.Ordinal),
				"kind":    chunk.Kind,
			},
			Embedding: embeddings[i],
		}
	}

	if err := idx.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents to index: %v", err)
	}

	idx.logger.Debug("Added chunks to index",
		slog.Int("chunk_count", len(chunks)),
		slog.Int("index_size", idx.collection.Count()))

	return nil
}

// Query returns the k nearest chunks by cosine similarity. k is
// clamped to the collection size because the underlying library
// rejects oversized result requests.
func (idx *Index) Query(ctx context.Context, embedding []float32, k int) ([]qa_type.SearchHit, error) {
	count := idx.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := idx.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %v", err)
	}

	hits := make([]qa_type.SearchHit, 0, len(results))
	for _, result := range results {
		page, _ := strconv.Atoi(result.Metadata["page"])
		ordinal, _ := strconv.Atoi(result.Metadata["ordinal"])
		hits = append(hits, qa_type.SearchHit{
			Chunk: qa_type.Chunk{
				Content: result.Content,
				Source:  result.Metadata["source"],
				Page:    page,
				Ordinal: ordinal,
				Kind:    result.Metadata["kind"],
			},
			Similarity: result.Similarity,
		})
	}
	return hits, nil
}

func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Reset drops every indexed chunk and starts an empty collection.
func (idx *Index) Reset() error {
	if err := idx.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %v", err)
	}
	collection, err := idx.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %v", err)
	}
	idx.collection = collection
	return nil
}
