package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"docqa/db"
	"docqa/services/answer_service"
)

// AskRequest represents the incoming question request
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskHandler answers questions against the indexed documents
type AskHandler struct {
	chain        *answer_service.Chain
	interactions *db.InteractionLog
	logger       *slog.Logger
}

func NewAskHandler(chain *answer_service.Chain, interactions *db.InteractionLog, logger *slog.Logger) *AskHandler {
	return &AskHandler{
		chain:        chain,
		interactions: interactions,
		logger:       logger,
	}
}

func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body",
			slog.String("error", err.Error()))
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validateRequest(&req); err != nil {
		h.logger.Error("Invalid request parameters",
			slog.String("error", err.Error()))
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	answer, err := h.chain.AnswerWithTopK(r.Context(), req.Question, req.TopK)
	if err != nil {
		h.logger.Error("Failed to answer question",
			slog.String("question", req.Question),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to answer question", http.StatusInternalServerError)
		return
	}

	// The interaction log is best effort: a logging failure must not
	// turn a good answer into an error response.
	if h.interactions != nil {
		if err := h.interactions.Append(r.Context(), answer.Question, answer.Text); err != nil {
			h.logger.Warn("Failed to record interaction",
				slog.String("error", err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(answer); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *AskHandler) validateRequest(req *AskRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("question cannot be empty")
	}

	if req.TopK != 0 && (req.TopK < 1 || req.TopK > 50) {
		return fmt.Errorf("top_k must be between 1 and 50")
	}

	return nil
}
