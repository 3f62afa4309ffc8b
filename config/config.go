package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	Domains         []string
	CertCacheDir    string
	HTTPPort        string
	HTTPSPort       string
	UIPort          string
	LLMProvider     string
	ChatModel       string
	EmbeddingModel  string
	VisionModel     string
	OllamaHost      string
	OpenAIAPIKey    string
	OpenAIAPIURL    string
	AnthropicAPIKey string
	AnthropicAPIURL string
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	DocumentsDir    string
	ImagesDir       string
	IndexDir        string
	DatabasePath    string
	ScanInterval    time.Duration
	LogDir          string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		Domains:         []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:    getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		HTTPSPort:       getEnv("HTTPS_PORT", "443"),
		UIPort:          getEnv("UI_PORT", "8091"),
		LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
		ChatModel:       getEnv("CHAT_MODEL", "llama3.2"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		VisionModel:     getEnv("VISION_MODEL", "llava"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:    getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicAPIURL: getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com/v1/messages"),
		ChunkSize:       getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 200),
		TopK:            getEnvAsInt("TOP_K", 5),
		DocumentsDir:    getEnv("DOCUMENTS_DIR", "data/documents"),
		ImagesDir:       getEnv("IMAGES_DIR", "data/images"),
		IndexDir:        getEnv("INDEX_DIR", "data/index"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/docqa.db"),
		ScanInterval:    time.Duration(getEnvAsInt("SCAN_INTERVAL", 60)) * time.Second,
		LogDir:          getEnv("LOG_DIR", "logs"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
