package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"docqa/db"
)

// InteractionsHandler lists recently logged question/answer pairs.
type InteractionsHandler struct {
	interactions *db.InteractionLog
	logger       *slog.Logger
}

func NewInteractionsHandler(interactions *db.InteractionLog, logger *slog.Logger) *InteractionsHandler {
	return &InteractionsHandler{
		interactions: interactions,
		logger:       logger,
	}
}

func (h *InteractionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	interactions, err := h.interactions.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load interactions",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to load interactions", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"interactions": interactions,
		"count":        len(interactions),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
