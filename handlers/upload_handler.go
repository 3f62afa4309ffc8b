package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"docqa/plugin_registry"
	"docqa/services/extract_service"
	"docqa/services/rag_service"
)

type UploadHandler struct {
	registry     *plugin_registry.PluginRegistry
	processor    *rag_service.Processor
	store        *rag_service.IngestStore
	documentsDir string
	logger       *slog.Logger
}

func NewUploadHandler(
	registry *plugin_registry.PluginRegistry,
	processor *rag_service.Processor,
	store *rag_service.IngestStore,
	documentsDir string,
	logger *slog.Logger,
) *UploadHandler {
	return &UploadHandler{
		registry:     registry,
		processor:    processor,
		store:        store,
		documentsDir: documentsDir,
		logger:       logger,
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Received file upload request")

	// Parse the incoming multipart form
	err := r.ParseMultipartForm(10 << 20) // 10 MB limit
	if err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Base strips any path components a client smuggles into the
	// filename before it touches the documents directory.
	filename := filepath.Base(header.Filename)
	ext := extract_service.Ext(filename)
	if _, err := h.registry.GetExtractor(ext); err != nil {
		h.logger.Error("Unsupported file type",
			slog.String("filename", filename),
			slog.String("extension", ext))
		writeJSONError(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	h.logger.Debug("Storing uploaded document",
		slog.String("filename", filename),
		slog.String("content_type", header.Header.Get("Content-Type")),
		slog.Int64("size", header.Size))

	if err := os.MkdirAll(h.documentsDir, 0755); err != nil {
		h.logger.Error("Failed to create documents directory",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to store document", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(h.documentsDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		h.logger.Error("Failed to create document file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to store document", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		h.logger.Error("Failed to write document file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to store document", http.StatusInternalServerError)
		return
	}
	if err := dst.Close(); err != nil {
		writeJSONError(w, "Failed to store document", http.StatusInternalServerError)
		return
	}

	jobID := uuid.New().String()
	h.store.Add(jobID, filename)

	// Ingestion runs in the background; clients poll the status
	// endpoint with the returned job ID.
	go h.ingest(jobID, path)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "Document accepted for ingestion",
		"job_id":   jobID,
		"document": filename,
	})
}

func (h *UploadHandler) ingest(jobID, path string) {
	result, err := h.processor.ProcessDocument(context.Background(), path)
	if err != nil {
		h.store.MarkFailed(jobID, err.Error())
		return
	}
	if result.Status == "failed" {
		h.store.MarkFailed(jobID, result.Error)
		return
	}
	h.store.MarkCompleted(jobID, &result.Metadata)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
