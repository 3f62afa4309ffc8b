package server

import (
	"crypto/tls"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"docqa/db"
	"docqa/handlers"
	"docqa/plugin_registry"
	"docqa/services/answer_service"
	"docqa/services/rag_service"
)

type Config struct {
	Domains      []string
	CertCacheDir string
	HTTPSPort    string
}

func SetupRoutes(
	registry *plugin_registry.PluginRegistry,
	processor *rag_service.Processor,
	store *rag_service.IngestStore,
	chain *answer_service.Chain,
	interactions *db.InteractionLog,
	documentsDir string,
	logger *slog.Logger,
) *mux.Router {
	r := mux.NewRouter()

	askHandler := handlers.NewAskHandler(chain, interactions, logger)
	r.Handle("/ask", askHandler).Methods("POST")

	uploadHandler := handlers.NewUploadHandler(registry, processor, store, documentsDir, logger)
	r.Handle("/documents/upload", uploadHandler).Methods("POST")

	statusHandler := handlers.NewIngestStatusHandler(store, logger)
	r.Handle("/documents/ingest/{id}/status", statusHandler).Methods("GET")

	interactionsHandler := handlers.NewInteractionsHandler(interactions, logger)
	r.Handle("/interactions", interactionsHandler).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, cfg Config) {
	// Configure autocert settings
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	// Configure the TLS config to use the autocertManager.GetCertificate function.
	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	// Write timeout covers the slowest path, a full LLM generation.
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment start the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
