package qa_type

const (
	KindText  = "text"
	KindImage = "image"
)

// PageRecord is one page of text pulled out of a source document.
// Page numbers are 1-based.
type PageRecord struct {
	Source string
	Page   int
	Text   string
}

// Chunk is a bounded piece of a page sized for the embedding model.
// Ordinal is the 1-based position of the chunk within its page.
type Chunk struct {
	Content string
	Source  string
	Page    int
	Ordinal int
	Kind    string
}

// SearchHit is a chunk returned by the vector index for a query.
type SearchHit struct {
	Chunk
	Similarity float32
}

type Citation struct {
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	Kind       string  `json:"kind"`
	Snippet    string  `json:"snippet"`
	Similarity float32 `json:"similarity"`
}

type AnswerStats struct {
	RetrievalTime  float64 `json:"retrieval_time"`
	GenerationTime float64 `json:"generation_time"`
	ChunksSearched int     `json:"chunks_searched"`
}

type Answer struct {
	Question  string      `json:"question"`
	Text      string      `json:"text"`
	Citations []Citation  `json:"citations"`
	Model     string      `json:"model"`
	Stats     AnswerStats `json:"stats"`
}

type ProcessingStats struct {
	ExtractionTime float64 `json:"extraction_time"`
	EmbeddingTime  float64 `json:"embedding_time"`
	IndexingTime   float64 `json:"indexing_time"`
}

type DocumentMetadata struct {
	WordCount       int             `json:"word_count"`
	PageCount       int             `json:"page_count"`
	ChunkCount      int             `json:"chunk_count"`
	ImageCount      int             `json:"image_count"`
	ContentPreview  string          `json:"content_preview"`
	ContentType     string          `json:"content_type"`
	ProcessingStats ProcessingStats `json:"processing_stats"`
}

// IngestResult is what an ingestion run reports back, both through the
// upload endpoint and the ingest job store.
type IngestResult struct {
	Message  string           `json:"message"`
	Document string           `json:"document"`
	Status   string           `json:"status"`
	Error    string           `json:"error,omitempty"`
	Metadata DocumentMetadata `json:"metadata"`
}
