package answer_service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/embeddings"

	"docqa/qa_type"
	"docqa/services/index_service"
	"docqa/services/llm_service"
)

type fakeEmbeddingClient struct {
	vectors map[string][]float32
}

func (f *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := f.vectors[text]; ok {
			result[i] = vec
		} else {
			result[i] = []float32{0, 0, 1}
		}
	}
	return result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testChain(t *testing.T, llm llm_service.LLMService) *Chain {
	t.Helper()

	idx, err := index_service.OpenInMemory(testLogger())
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}

	chunks := []qa_type.Chunk{
		{Content: "revenue grew twelve percent", Source: "report.pdf", Page: 3, Ordinal: 1, Kind: qa_type.KindText},
		{Content: "operating costs were flat", Source: "report.pdf", Page: 4, Ordinal: 1, Kind: qa_type.KindText},
		{Content: "a pie chart of market share", Source: "report.pdf", Page: 5, Ordinal: 1, Kind: qa_type.KindImage},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.4359, 0},
	}
	if err := idx.AddChunks(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(&fakeEmbeddingClient{
		vectors: map[string][]float32{
			"what was revenue growth":        {1, 0, 0},
			"show me the market share chart": {0.9, 0.4359, 0},
		},
	})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}

	llmConfig := map[string]interface{}{"model_name": "test-model"}
	return NewChain(embedder, idx, llm, llmConfig, 2, testLogger())
}

func TestAnswerRetrievesAndCites(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "Revenue grew twelve percent.", nil
		},
	}
	chain := testChain(t, mock)

	answer, err := chain.Answer(context.Background(), "what was revenue growth")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if answer.Text != "Revenue grew twelve percent." {
		t.Errorf("answer text = %q", answer.Text)
	}
	if answer.Model != "test-model" {
		t.Errorf("model = %q", answer.Model)
	}
	if answer.Stats.ChunksSearched != 3 {
		t.Errorf("chunks searched = %d, want 3", answer.Stats.ChunksSearched)
	}

	if len(answer.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(answer.Citations))
	}
	best := answer.Citations[0]
	if best.Source != "report.pdf" || best.Page != 3 {
		t.Errorf("best citation = %+v", best)
	}
	if best.Snippet != "revenue grew twelve percent" {
		t.Errorf("snippet = %q", best.Snippet)
	}
	if answer.Citations[0].Similarity < answer.Citations[1].Similarity {
		t.Errorf("citations not ordered by similarity")
	}

	if len(mock.Prompts) != 1 {
		t.Fatalf("LLM called %d times, want 1", len(mock.Prompts))
	}
	prompt := mock.Prompts[0]
	if !strings.Contains(prompt, "revenue grew twelve percent") {
		t.Errorf("prompt missing retrieved chunk: %q", prompt)
	}
	if !strings.Contains(prompt, "what was revenue growth") {
		t.Errorf("prompt missing question: %q", prompt)
	}
	if !strings.Contains(prompt, "[1] report.pdf, page 3") {
		t.Errorf("prompt missing source label: %q", prompt)
	}
}

func TestAnswerMarksImageContext(t *testing.T) {
	mock := &llm_service.MockLLMService{}
	chain := testChain(t, mock)

	answer, err := chain.Answer(context.Background(), "show me the market share chart")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	var foundImage bool
	for _, citation := range answer.Citations {
		if citation.Kind == qa_type.KindImage {
			foundImage = true
		}
	}
	if !foundImage {
		t.Errorf("citations = %+v, want an image citation", answer.Citations)
	}
	if !strings.Contains(mock.Prompts[0], "(image)") {
		t.Errorf("prompt does not label image context: %q", mock.Prompts[0])
	}
}

func TestAnswerWithTopKOverride(t *testing.T) {
	mock := &llm_service.MockLLMService{}
	chain := testChain(t, mock)

	answer, err := chain.AnswerWithTopK(context.Background(), "what was revenue growth", 1)
	if err != nil {
		t.Fatalf("AnswerWithTopK: %v", err)
	}
	if len(answer.Citations) != 1 {
		t.Errorf("got %d citations, want 1", len(answer.Citations))
	}

	answer, err = chain.AnswerWithTopK(context.Background(), "what was revenue growth", 0)
	if err != nil {
		t.Fatalf("AnswerWithTopK: %v", err)
	}
	if len(answer.Citations) != 2 {
		t.Errorf("got %d citations at the default depth, want 2", len(answer.Citations))
	}
}

func TestAnswerEmptyIndexSkipsLLM(t *testing.T) {
	idx, err := index_service.OpenInMemory(testLogger())
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	embedder, err := embeddings.NewEmbedder(&fakeEmbeddingClient{})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	mock := &llm_service.MockLLMService{}
	chain := NewChain(embedder, idx, mock, map[string]interface{}{"model_name": "m"}, 5, testLogger())

	answer, err := chain.Answer(context.Background(), "anything indexed?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Text != NoContextAnswer {
		t.Errorf("answer = %q", answer.Text)
	}
	if len(answer.Citations) != 0 {
		t.Errorf("citations = %+v, want none", answer.Citations)
	}
	if len(mock.Prompts) != 0 {
		t.Errorf("LLM was called %d times, want 0", len(mock.Prompts))
	}
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	chain := testChain(t, &llm_service.MockLLMService{})

	if _, err := chain.Answer(context.Background(), "   "); err == nil {
		t.Error("expected error for empty question, got nil")
	}
}

func TestAnswerPropagatesLLMFailure(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	chain := testChain(t, mock)

	_, err := chain.Answer(context.Background(), "what was revenue growth")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("error = %v", err)
	}
}
