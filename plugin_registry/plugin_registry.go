package plugin_registry

import (
	"fmt"
	"sort"

	"docqa/services/extract_service"
	"docqa/services/llm_service"
)

// PluginRegistry maps file extensions to extractors and provider
// names to LLM services, so ingestion and answering pick their
// implementations by configuration instead of hard wiring.
type PluginRegistry struct {
	extractors  map[string]extract_service.Extractor
	llmServices map[string]llm_service.LLMService
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		extractors:  make(map[string]extract_service.Extractor),
		llmServices: make(map[string]llm_service.LLMService),
	}
}

// RegisterExtractor registers the extractor for every extension it claims.
func (pr *PluginRegistry) RegisterExtractor(extractor extract_service.Extractor) {
	for _, ext := range extractor.Extensions() {
		pr.extractors[ext] = extractor
	}
}

// GetExtractor returns the extractor claiming the given extension.
func (pr *PluginRegistry) GetExtractor(ext string) (extract_service.Extractor, error) {
	extractor, ok := pr.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	return extractor, nil
}

// SupportedExtensions lists every registered extension in sorted order.
func (pr *PluginRegistry) SupportedExtensions() []string {
	exts := make([]string, 0, len(pr.extractors))
	for ext := range pr.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// RegisterLLMService registers a new LLM service
func (pr *PluginRegistry) RegisterLLMService(name string, service llm_service.LLMService) {
	pr.llmServices[name] = service
}

// GetLLMService returns an LLM service by name
func (pr *PluginRegistry) GetLLMService(name string) (llm_service.LLMService, bool) {
	service, ok := pr.llmServices[name]
	return service, ok
}
