package llm_service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docqa/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCallConfig(apiURL string) map[string]interface{} {
	return map[string]interface{}{
		"api_url":    apiURL,
		"api_key":    "test-key",
		"model_name": "test-model",
		"parameters": map[string]interface{}{
			"max_tokens": 256,
		},
	}
}

func TestOpenAIServiceSuccess(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Revenue grew 12 percent."}}]}`)
	}))
	defer server.Close()

	s := NewOpenAIService(testLogger())
	got, err := s.CallLLM(context.Background(), testCallConfig(server.URL), "What was revenue growth?")
	if err != nil {
		t.Fatalf("CallLLM: %v", err)
	}
	if got != "Revenue grew 12 percent." {
		t.Errorf("response = %q", got)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if gotPayload["model"] != "test-model" {
		t.Errorf("model = %v", gotPayload["model"])
	}
	if gotPayload["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", gotPayload["max_tokens"])
	}

	messages, ok := gotPayload["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("messages = %v", gotPayload["messages"])
	}
	user := messages[1].(map[string]interface{})
	if user["content"] != "What was revenue growth?" {
		t.Errorf("user message = %v", user["content"])
	}
}

func TestOpenAIServiceQuotaErrorDoesNotRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"quota exhausted","type":"insufficient_quota","code":"insufficient_quota"}}`)
	}))
	defer server.Close()

	s := &OpenAIService{
		httpClient: server.Client(),
		logger:     testLogger(),
		maxRetries: 3,
		retryDelay: time.Millisecond,
	}

	_, err := s.CallLLM(context.Background(), testCallConfig(server.URL), "question")
	if err == nil {
		t.Fatal("expected quota error, got nil")
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestOpenAIServiceRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"message":"upstream overloaded","type":"server_error","code":""}}`)
			return
		}
		io.WriteString(w, `{"choices":[{"message":{"content":"recovered"}}]}`)
	}))
	defer server.Close()

	s := &OpenAIService{
		httpClient: server.Client(),
		logger:     testLogger(),
		maxRetries: 3,
		retryDelay: time.Millisecond,
	}

	got, err := s.CallLLM(context.Background(), testCallConfig(server.URL), "question")
	if err != nil {
		t.Fatalf("CallLLM: %v", err)
	}
	if got != "recovered" {
		t.Errorf("response = %q", got)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestOpenAIServiceMissingConfig(t *testing.T) {
	s := NewOpenAIService(testLogger())

	tests := []struct {
		name   string
		config map[string]interface{}
	}{
		{name: "no api_url", config: map[string]interface{}{"api_key": "k", "model_name": "m"}},
		{name: "no api_key", config: map[string]interface{}{"api_url": "http://x", "model_name": "m"}},
		{name: "no model_name", config: map[string]interface{}{"api_url": "http://x", "api_key": "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.maxRetries = 1
			if _, err := s.CallLLM(context.Background(), tt.config, "question"); err == nil {
				t.Error("expected config error, got nil")
			}
		})
	}
}

func TestAnthropicServiceSuccess(t *testing.T) {
	var gotKey, gotVersion string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content":[{"type":"text","text":"Costs were flat."}]}`)
	}))
	defer server.Close()

	s := NewAnthropicService(testLogger())
	got, err := s.CallLLM(context.Background(), testCallConfig(server.URL), "What about costs?")
	if err != nil {
		t.Fatalf("CallLLM: %v", err)
	}
	if got != "Costs were flat." {
		t.Errorf("response = %q", got)
	}

	if gotKey != "test-key" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotPayload["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", gotPayload["max_tokens"])
	}
}

func TestAnthropicServiceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"model not found"}}`)
	}))
	defer server.Close()

	s := &AnthropicService{
		httpClient: server.Client(),
		logger:     testLogger(),
		maxRetries: 2,
		retryDelay: time.Millisecond,
	}

	_, err := s.CallLLM(context.Background(), testCallConfig(server.URL), "question")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("error = %v", err)
	}
}

func TestMockLLMServiceRecordsPrompts(t *testing.T) {
	mock := &MockLLMService{}

	got, err := mock.CallLLM(context.Background(), nil, "first prompt")
	if err != nil {
		t.Fatalf("CallLLM: %v", err)
	}
	if got != "mock response" {
		t.Errorf("response = %q", got)
	}

	if len(mock.Prompts) != 1 || mock.Prompts[0] != "first prompt" {
		t.Errorf("recorded prompts = %v", mock.Prompts)
	}
}

func TestSafeParseFloat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{name: "float64", value: 1.5, want: 1.5},
		{name: "string", value: "2.5", want: 2.5},
		{name: "bad string", value: "abc", want: 9},
		{name: "int", value: 3, want: 3},
		{name: "int64", value: int64(4), want: 4},
		{name: "nil", value: nil, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safeParseFloat(tt.value, 9); got != tt.want {
				t.Errorf("safeParseFloat(%v) = %f, want %f", tt.value, got, tt.want)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	base := config.Config{
		ChatModel:       "test-chat",
		OllamaHost:      "http://ollama:11434",
		OpenAIAPIKey:    "openai-key",
		OpenAIAPIURL:    "https://api.openai.com/v1/chat/completions",
		AnthropicAPIKey: "anthropic-key",
		AnthropicAPIURL: "https://api.anthropic.com/v1/messages",
	}

	ollamaCfg := base
	ollamaCfg.LLMProvider = "ollama"
	got := ConfigFromEnv(ollamaCfg)
	if got["server_url"] != "http://ollama:11434" || got["model_name"] != "test-chat" {
		t.Errorf("ollama config = %v", got)
	}

	openaiCfg := base
	openaiCfg.LLMProvider = "openai"
	got = ConfigFromEnv(openaiCfg)
	if got["api_key"] != "openai-key" || got["api_url"] != base.OpenAIAPIURL {
		t.Errorf("openai config = %v", got)
	}

	anthropicCfg := base
	anthropicCfg.LLMProvider = "anthropic"
	got = ConfigFromEnv(anthropicCfg)
	if got["api_key"] != "anthropic-key" || got["api_url"] != base.AnthropicAPIURL {
		t.Errorf("anthropic config = %v", got)
	}
}
