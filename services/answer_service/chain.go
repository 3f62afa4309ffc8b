package answer_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/prompts"

	"docqa/qa_type"
	"docqa/services/index_service"
	"docqa/services/llm_service"
)

const snippetLength = 200

// NoContextAnswer is returned without calling the LLM when the index
// holds nothing to ground an answer on.
const NoContextAnswer = "No documents have been ingested yet, so there is no context to answer from."

var answerPrompt = prompts.NewPromptTemplate(
	`Use the following context from the indexed documents to answer the question.
Each context entry is labeled with its source document and page.
If the context does not contain the answer, say you do not know.

Context:
{{.context}}

Question: {{.question}}

Answer:`,
	[]string{"context", "question"},
)

// Chain answers a question by embedding it, retrieving the nearest
// chunks from the index and handing the rendered prompt to the
// configured LLM.
type Chain struct {
	embedder  embeddings.Embedder
	index     *index_service.Index
	llm       llm_service.LLMService
	llmConfig map[string]interface{}
	modelName string
	topK      int
	logger    *slog.Logger
}

func NewChain(
	embedder embeddings.Embedder,
	index *index_service.Index,
	llm llm_service.LLMService,
	llmConfig map[string]interface{},
	topK int,
	logger *slog.Logger,
) *Chain {
	modelName, _ := llmConfig["model_name"].(string)
	return &Chain{
		embedder:  embedder,
		index:     index,
		llm:       llm,
		llmConfig: llmConfig,
		modelName: modelName,
		topK:      topK,
		logger:    logger,
	}
}

func (c *Chain) Answer(ctx context.Context, question string) (*qa_type.Answer, error) {
	return c.AnswerWithTopK(ctx, question, c.topK)
}

// AnswerWithTopK overrides the configured retrieval depth for a single
// question. A topK of zero or less falls back to the default.
func (c *Chain) AnswerWithTopK(ctx context.Context, question string, topK int) (*qa_type.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if topK <= 0 {
		topK = c.topK
	}

	retrievalStart := time.Now()
	queryEmbedding, err := c.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := c.index.Query(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	retrievalTime := time.Since(retrievalStart).Seconds()

	if len(hits) == 0 {
		c.logger.Warn("Question asked against an empty index",
			slog.String("question", question))
		return &qa_type.Answer{
			Question: question,
			Text:     NoContextAnswer,
			Model:    c.modelName,
			Stats: qa_type.AnswerStats{
				RetrievalTime: retrievalTime,
			},
		}, nil
	}

	promptText, err := answerPrompt.Format(map[string]interface{}{
		"context":  formatContext(hits),
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	generationStart := time.Now()
	text, err := c.llm.CallLLM(ctx, c.llmConfig, promptText)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	answer := &qa_type.Answer{
		Question:  question,
		Text:      text,
		Citations: citations(hits),
		Model:     c.modelName,
		Stats: qa_type.AnswerStats{
			RetrievalTime:  retrievalTime,
			GenerationTime: time.Since(generationStart).Seconds(),
			ChunksSearched: c.index.Count(),
		},
	}

	c.logger.Info("Answered question",
		slog.String("question", question),
		slog.Int("citation_count", len(answer.Citations)),
		slog.Float64("retrieval_time", answer.Stats.RetrievalTime),
		slog.Float64("generation_time", answer.Stats.GenerationTime))

	return answer, nil
}

// formatContext labels every retrieved chunk with its source so the
// model can ground its answer, mirroring the citation list returned to
// the caller.
func formatContext(hits []qa_type.SearchHit) string {
	var sb strings.Builder
	for i, hit := range hits {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := fmt.Sprintf("[%d] %s, page %d", i+1, hit.Source, hit.Page)
		if hit.Kind == qa_type.KindImage {
			label += " (image)"
		}
		sb.WriteString(label)
		sb.WriteString(":\n")
		sb.WriteString(hit.Content)
	}
	return sb.String()
}

func citations(hits []qa_type.SearchHit) []qa_type.Citation {
	result := make([]qa_type.Citation, 0, len(hits))
	for _, hit := range hits {
		result = append(result, qa_type.Citation{
			Source:     hit.Source,
			Page:       hit.Page,
			Kind:       hit.Kind,
			Snippet:    snippet(hit.Content),
			Similarity: hit.Similarity,
		})
	}
	return result
}

func snippet(content string) string {
	if len(content) <= snippetLength {
		return content
	}
	return content[:snippetLength] + "..."
}
