package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIAddr              string
	TemporalAddress      string
	TemporalTaskQueue    string
	EmbeddedWorker       bool
	MaxConcurrentIngests int

	RegistryDriver string
	PostgresURL    string

	UploadDir      string
	MaxUploadBytes int64

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	QueryTimeoutSecs int

	EmbedProvider string
	LLMProvider   string
	EmbedModel    string
	ChatModel     string
	Temperature   float64

	GeminiAPIKey string
	OpenAIAPIKey string

	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeIndexName string
}

func Load() Config {
	return Config{
		APIAddr:              getenv("DOCCHAT_API_ADDR", ":8080"),
		TemporalAddress:      getenv("DOCCHAT_TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTaskQueue:    getenv("DOCCHAT_TEMPORAL_TASK_QUEUE", "docchat"),
		EmbeddedWorker:       getenvBool("DOCCHAT_EMBEDDED_WORKER", true),
		MaxConcurrentIngests: getenvInt("DOCCHAT_MAX_CONCURRENT_INGESTS", 4),

		RegistryDriver: getenv("DOCCHAT_REGISTRY_DRIVER", "memory"),
		PostgresURL:    getenv("DOCCHAT_POSTGRES_URL", ""),

		UploadDir:      getenv("DOCCHAT_UPLOAD_DIR", "./data/uploads"),
		MaxUploadBytes: int64(getenvInt("DOCCHAT_MAX_UPLOAD_BYTES", 10<<20)),

		ChunkSize:    getenvInt("DOCCHAT_CHUNK_SIZE", 1000),
		ChunkOverlap: getenvInt("DOCCHAT_CHUNK_OVERLAP", 200),
		TopK:         getenvInt("DOCCHAT_TOP_K", 10),

		QueryTimeoutSecs: getenvInt("DOCCHAT_QUERY_TIMEOUT_SECONDS", 30),

		EmbedProvider: getenv("DOCCHAT_EMBED_PROVIDER", "gemini"),
		LLMProvider:   getenv("DOCCHAT_LLM_PROVIDER", "gemini"),
		EmbedModel:    getenv("DOCCHAT_EMBED_MODEL", "text-embedding-004"),
		ChatModel:     getenv("DOCCHAT_CHAT_MODEL", "gemini-2.0-flash"),
		Temperature:   getenvFloat("DOCCHAT_TEMPERATURE", 0.3),

		GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getenv("OPENAI_API_KEY", ""),

		PineconeAPIKey:    getenv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getenv("PINECONE_INDEX_HOST", ""),
		PineconeIndexName: getenv("PINECONE_INDEX_NAME", "docchat"),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(k string, fallback bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
