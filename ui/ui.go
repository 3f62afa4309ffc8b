package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"docqa/qa_type"
	"docqa/services/answer_service"
)

//go:embed templates/*
var content embed.FS

// Page is the demo interface: a single question box that runs the
// same answering chain as the API and renders the result with its
// citations.
type Page struct {
	chain     *answer_service.Chain
	templates *template.Template
	logger    *slog.Logger
}

func NewPage(chain *answer_service.Chain, logger *slog.Logger) (*Page, error) {
	templates, err := template.ParseFS(content, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse ui templates: %w", err)
	}
	return &Page{
		chain:     chain,
		templates: templates,
		logger:    logger,
	}, nil
}

type pageData struct {
	Question string
	Answer   *qa_type.Answer
	Error    string
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var data pageData
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		data.Question = strings.TrimSpace(r.FormValue("question"))
		if data.Question == "" {
			data.Error = "Please enter a question."
		} else {
			answer, err := p.chain.Answer(r.Context(), data.Question)
			if err != nil {
				p.logger.Error("Failed to answer question from demo page",
					slog.String("question", data.Question),
					slog.String("error", err.Error()))
				data.Error = "Something went wrong while answering. Check the server logs."
			} else {
				data.Answer = answer
			}
		}
	}

	if err := p.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		p.logger.Error("Failed to execute template",
			slog.String("error", err.Error()))
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
	}
}
