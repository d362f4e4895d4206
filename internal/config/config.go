package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	TrainingStoreFile     = "file"
	TrainingStoreRedis    = "redis"
	TrainingStorePostgres = "postgres"

	FallbackRandom = "random"
	FallbackFirst  = "first"
)

type Config struct {
	APIPort  string
	LogLevel string

	PostgresDSN string

	NATSURL             string
	NATSDocumentSubject string
	NATSTrainingSubject string

	RedisAddr string

	TrainingStore    string
	TrainingFilePath string
	TrainingKey      string

	CatalogPath string
	StoragePath string

	MatchThreshold        float64
	DedupThreshold        float64
	HistoryLimit          int
	SimplifyAnswers       bool
	FallbackMode          string
	OptimizeMinConfidence float64

	APIKey                string
	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int
	APIMaxUploadMB        int

	ResilienceRetryAttempts  int
	ResilienceBreakerEnabled bool

	WorkerMetricsPort string
}

// Load reads the environment. POSTGRES_DSN, NATS_URL and REDIS_ADDR are
// optional: an empty value disables the component that needs them.
func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:             mustEnv("NATS_URL", ""),
		NATSDocumentSubject: mustEnv("NATS_DOCUMENT_SUBJECT", "faq.documents.ingest"),
		NATSTrainingSubject: mustEnv("NATS_TRAINING_SUBJECT", "faq.training.updated"),

		RedisAddr: mustEnv("REDIS_ADDR", ""),

		TrainingStore:    strings.ToLower(mustEnv("TRAINING_STORE", TrainingStoreFile)),
		TrainingFilePath: mustEnv("TRAINING_FILE_PATH", "./data/training.json"),
		TrainingKey:      mustEnv("TRAINING_KEY", "faq:training"),

		CatalogPath: mustEnv("CATALOG_PATH", ""),
		StoragePath: mustEnv("STORAGE_PATH", "./data/storage"),

		MatchThreshold:        mustEnvFloat("MATCH_THRESHOLD", 0.3),
		DedupThreshold:        mustEnvFloat("DEDUP_THRESHOLD", 0.8),
		HistoryLimit:          mustEnvInt("HISTORY_LIMIT", 20),
		SimplifyAnswers:       mustEnvBool("SIMPLIFY_ANSWERS", true),
		FallbackMode:          strings.ToLower(mustEnv("FALLBACK_MODE", FallbackRandom)),
		OptimizeMinConfidence: mustEnvFloat("OPTIMIZE_MIN_CONFIDENCE", 0),

		APIKey:                mustEnv("API_KEY", ""),
		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 50),
		APIMaxUploadMB:        mustEnvInt("API_MAX_UPLOAD_MB", 20),

		ResilienceRetryAttempts:  mustEnvInt("RESILIENCE_RETRY_ATTEMPTS", 3),
		ResilienceBreakerEnabled: mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
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
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
