package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIEmbedModel string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	VectorSize       int

	PostgresDSN string

	NATSURL     string
	NATSSubject string

	DocsDirs       string
	GithubRawBase  string
	GithubDocFiles string

	ChunkSize    int
	ChunkOverlap int

	RAGTopK           int
	RAGScoreThreshold float64

	ConfidenceUserContext float64
	ConfidenceGeneral     float64
	ConfidenceFloor       float64
	ConfidenceCeiling     float64

	GenMaxTokens   int
	GenTemperature float64

	EmbedRatePerSec float64
	EmbedRateBurst  int

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:     mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    mustEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:      mustEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIEmbedModel: mustEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),

		QdrantURL:        mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     mustEnv("QDRANT_API_KEY", ""),
		QdrantCollection: mustEnv("QDRANT_COLLECTION_NAME", "book_vectors"),
		VectorSize:       mustEnvInt("VECTOR_SIZE", 1536),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "book.reindex"),

		DocsDirs:       mustEnv("DOCS_DIRS", "./book/docs,./docs,./content,./book/content"),
		GithubRawBase:  mustEnv("GITHUB_RAW_BASE", "https://raw.githubusercontent.com/Sani-e-Zehra/ai-native-book/main/docs"),
		GithubDocFiles: mustEnv("GITHUB_DOC_FILES", defaultGithubDocFiles),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 200),

		RAGTopK:           mustEnvInt("RAG_TOP_K", 5),
		RAGScoreThreshold: mustEnvFloat("RAG_SCORE_THRESHOLD", 0.5),

		ConfidenceUserContext: mustEnvFloat("CONFIDENCE_USER_CONTEXT", 0.9),
		ConfidenceGeneral:     mustEnvFloat("CONFIDENCE_GENERAL", 0.6),
		ConfidenceFloor:       mustEnvFloat("CONFIDENCE_FLOOR", 0.5),
		ConfidenceCeiling:     mustEnvFloat("CONFIDENCE_CEILING", 0.95),

		GenMaxTokens:   mustEnvInt("GEN_MAX_TOKENS", 1000),
		GenTemperature: mustEnvFloat("GEN_TEMPERATURE", 0.3),

		EmbedRatePerSec: mustEnvFloat("EMBED_RATE_PER_SEC", 2),
		EmbedRateBurst:  mustEnvInt("EMBED_RATE_BURST", 4),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

const defaultGithubDocFiles = "chapter-1-introduction.md,chapter-2-fundamentals.md,chapter-3-design.md," +
	"chapter-4-motor-control.md,chapter-5-sensor-fusion.md,chapter-6-locomotion.md," +
	"chapter-7-ai-systems.md,chapter-8-control-theory.md,chapter-9-applications.md," +
	"conclusion.md,index.md,intro.md"

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
