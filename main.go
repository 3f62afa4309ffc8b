package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"docqa/config"
	"docqa/db"
	"docqa/logging"
	"docqa/plugin_registry"
	"docqa/scheduler"
	"docqa/server"
	"docqa/services/answer_service"
	"docqa/services/embedding_service"
	"docqa/services/extract_service"
	"docqa/services/index_service"
	"docqa/services/llm_service"
	"docqa/services/rag_service"
	"docqa/ui"
)

func main() {
	cfg := config.Load()

	// Initialize the logger
	logger, err := initLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize PluginRegistry
	registry := plugin_registry.NewPluginRegistry()
	registerPlugins(registry, logger)

	llmService, ok := registry.GetLLMService(cfg.LLMProvider)
	if !ok {
		log.Fatalf("Unknown LLM provider: %s", cfg.LLMProvider)
	}
	llmConfig := llm_service.ConfigFromEnv(cfg)

	embedder, err := embedding_service.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	describer, err := embedding_service.NewVisionDescriber(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize vision describer: %v", err)
	}

	index, err := index_service.Open(cfg.IndexDir, logger)
	if err != nil {
		log.Fatalf("Failed to open vector index: %v", err)
	}

	interactions, err := db.OpenInteractionLog(cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open interaction log: %v", err)
	}
	defer interactions.Close()

	catalog, err := db.OpenDocumentCatalog(cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open document catalog: %v", err)
	}
	defer catalog.Close()

	chunker, err := rag_service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Invalid chunking configuration: %v", err)
	}

	processor := rag_service.NewProcessor(
		registry,
		extract_service.NewImageExtractor(logger),
		describer,
		embedder,
		index,
		chunker,
		cfg.ImagesDir,
		logger,
	)

	// Finished ingest jobs are kept for a day so clients can poll late.
	store := rag_service.NewIngestStore(logger)
	store.StartCleanup(24*time.Hour, time.Hour)

	chain := answer_service.NewChain(embedder, index, llmService, llmConfig, cfg.TopK, logger)

	// Initialize the documents directory watcher
	watcher := scheduler.New(cfg.DocumentsDir, cfg.ScanInterval, processor, registry, catalog, logger)
	go watcher.Start()

	// Serve the demo page on its own port
	page, err := ui.NewPage(chain, logger)
	if err != nil {
		log.Fatalf("Failed to initialize demo page: %v", err)
	}
	go func() {
		logger.Info("Demo page listening", slog.String("port", cfg.UIPort))
		log.Fatal(http.ListenAndServe(":"+cfg.UIPort, page))
	}()

	// Initialize server
	r := server.SetupRoutes(registry, processor, store, chain, interactions, cfg.DocumentsDir, logger)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, server.Config{
			Domains:      cfg.Domains,
			CertCacheDir: cfg.CertCacheDir,
			HTTPSPort:    cfg.HTTPSPort,
		})
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 3 * time.Minute,
		}
		logger.Info("API listening", slog.String("port", cfg.HTTPPort))
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func registerPlugins(registry *plugin_registry.PluginRegistry, logger *slog.Logger) {
	// Register the document extractors
	registry.RegisterExtractor(extract_service.NewPDFExtractor(logger))
	registry.RegisterExtractor(extract_service.NewWordExtractor(logger))
	registry.RegisterExtractor(extract_service.NewHTMLExtractor(logger))
	registry.RegisterExtractor(extract_service.NewMarkdownExtractor(logger))
	registry.RegisterExtractor(extract_service.NewTextExtractor(logger))
	registry.RegisterExtractor(extract_service.NewSpreadsheetExtractor(logger))

	// Register the LLM Services
	registry.RegisterLLMService("ollama", llm_service.NewOllamaService(logger))
	registry.RegisterLLMService("openai", llm_service.NewOpenAIService(logger))
	registry.RegisterLLMService("anthropic", llm_service.NewAnthropicService(logger))
}

func initLogger(logDir string) (*slog.Logger, error) {
	fileHandler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
