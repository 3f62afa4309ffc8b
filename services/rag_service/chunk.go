package rag_service

import (
	"fmt"

	"docqa/qa_type"
)

// Chunker splits page text into fixed-size overlapping chunks sized
// for the embedding model's input window.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the size and overlap once so Split never has to.
// A non-positive stride (overlap >= size) would loop forever, so it is
// rejected here.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split walks text with a stride of size-overlap bytes. Every chunk has
// exactly size bytes except the last, which carries whatever remains.
// Consecutive chunks share overlap bytes.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	stride := c.size - c.overlap
	var parts []string
	for start := 0; ; start += stride {
		end := start + c.size
		if end >= len(text) {
			parts = append(parts, text[start:])
			break
		}
		parts = append(parts, text[start:end])
	}
	return parts
}

// ChunkPages splits every page and labels each chunk with the source
// path, page number and 1-based ordinal it came from.
func (c *Chunker) ChunkPages(pages []qa_type.PageRecord) []qa_type.Chunk {
	var chunks []qa_type.Chunk
	for _, page := range pages {
		for i, part := range c.Split(page.Text) {
			chunks = append(chunks, qa_type.Chunk{
				Content: part,
				Source:  page.Source,
				Page:    page.Page,
				Ordinal: i + 1,
				Kind:    qa_type.KindText,
			})
		}
	}
	return chunks
}
