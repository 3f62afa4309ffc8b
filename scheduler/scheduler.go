package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"docqa/db"
	"docqa/plugin_registry"
	"docqa/services/extract_service"
	"docqa/services/rag_service"
)

// Prevent multiple ingestions of the same document running at the same
// time when a scan overlaps a slow ingest.
var runningIngests sync.Map

// Watcher polls the documents directory and ingests files that are new
// or have changed since their recorded modification time.
type Watcher struct {
	documentsDir string
	scanInterval time.Duration
	processor    *rag_service.Processor
	registry     *plugin_registry.PluginRegistry
	catalog      *db.DocumentCatalog
	logger       *slog.Logger
	stop         chan struct{}
}

func New(
	documentsDir string,
	scanInterval time.Duration,
	processor *rag_service.Processor,
	registry *plugin_registry.PluginRegistry,
	catalog *db.DocumentCatalog,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		documentsDir: documentsDir,
		scanInterval: scanInterval,
		processor:    processor,
		registry:     registry,
		catalog:      catalog,
		logger:       logger,
		stop:         make(chan struct{}),
	}
}

func (w *Watcher) Start() {
	if w.scanInterval <= 0 {
		w.logger.Info("Document watcher disabled")
		return
	}

	w.logger.Info("Starting document watcher",
		slog.String("dir", w.documentsDir),
		slog.Duration("interval", w.scanInterval))

	for {
		w.ScanOnce()

		select {
		case <-w.stop:
			return
		case <-time.After(w.scanInterval):
		}
	}
}

func (w *Watcher) Stop() {
	close(w.stop)
}

// ScanOnce walks the documents directory and spawns an ingestion for
// every supported file the catalog does not know at its current
// modification time.
func (w *Watcher) ScanOnce() {
	entries, err := os.ReadDir(w.documentsDir)
	if err != nil {
		w.logger.Error("Failed to read documents directory",
			slog.String("dir", w.documentsDir),
			slog.String("error", err.Error()))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, err := w.registry.GetExtractor(extract_service.Ext(name)); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.logger.Warn("Failed to stat document",
				slog.String("filename", name),
				slog.String("error", err.Error()))
			continue
		}
		mtime := info.ModTime()

		last, known, err := w.catalog.LastIngested(context.Background(), name)
		if err != nil {
			w.logger.Error("Failed to consult document catalog",
				slog.String("filename", name),
				slog.String("error", err.Error()))
			continue
		}
		if known && !mtime.After(last) {
			continue
		}

		go w.ingest(filepath.Join(w.documentsDir, name), mtime)
	}
}

func (w *Watcher) ingest(path string, mtime time.Time) {
	if _, loaded := runningIngests.LoadOrStore(path, struct{}{}); loaded {
		// Ingestion is already running
		return
	}
	defer runningIngests.Delete(path)

	filename := filepath.Base(path)

	// A scan can race an ingest that is just finishing, so the catalog
	// is checked again under the guard.
	if last, known, err := w.catalog.LastIngested(context.Background(), filename); err == nil && known && !mtime.After(last) {
		return
	}

	result, err := w.processor.ProcessDocument(context.Background(), path)
	if err != nil {
		// Embedding and indexing errors are usually transient, so the
		// mtime stays unrecorded and the next scan retries.
		w.logger.Error("Failed to ingest document",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return
	}

	// A document that failed extraction will keep failing until the
	// file itself changes, so its mtime is recorded either way.
	if err := w.catalog.RecordIngested(context.Background(), filename, mtime, result.Status); err != nil {
		w.logger.Error("Failed to update document catalog",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}

	if result.Status == "failed" {
		w.logger.Warn("Document ingestion failed",
			slog.String("filename", filename),
			slog.String("error", result.Error))
		return
	}

	w.logger.Info("Ingested document",
		slog.String("filename", filename),
		slog.Int("chunk_count", result.Metadata.ChunkCount))
}
