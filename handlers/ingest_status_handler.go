package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"docqa/services/rag_service"
)

// IngestStatusHandler reports the state of background ingestion jobs.
type IngestStatusHandler struct {
	store  *rag_service.IngestStore
	logger *slog.Logger
}

func NewIngestStatusHandler(store *rag_service.IngestStore, logger *slog.Logger) *IngestStatusHandler {
	return &IngestStatusHandler{
		store:  store,
		logger: logger,
	}
}

func (h *IngestStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	job, exists := h.store.Get(jobID)
	if !exists {
		writeJSONError(w, "Ingest job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(job); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
