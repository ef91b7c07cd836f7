package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port                string
	CORSAllowOrigin     []string
	ObjectStoreType     string
	LocalStoreDir       string
	AWSRegion           string
	S3Bucket            string
	S3Prefix            string
	SSEKMSKeyID         string
	MaxUploadBytes      int64
	DeleteAfterDownload bool
	CleanupInterval     time.Duration
	MaxResultAge        time.Duration
	StageTimeout        time.Duration
	ReferenceCorpus     string
	Preprocessor        string
	OllamaURL           string
	OllamaModel         string
	OllamaTimeout       time.Duration
	Env                 string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:                getEnv("PORT", "8080"),
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),
		MaxUploadBytes:      getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),
		DeleteAfterDownload: getEnvBool("DELETE_AFTER_DOWNLOAD", true),
		CleanupInterval:     getEnvSeconds("CLEANUP_INTERVAL_SECONDS", 60),
		MaxResultAge:        getEnvSeconds("MAX_RESULT_AGE_SECONDS", 3600),
		StageTimeout:        getEnvSeconds("STAGE_TIMEOUT_SECONDS", 30),
		ReferenceCorpus:     getEnv("REFERENCE_CORPUS", "general_english"),
		Preprocessor:        normalizePreprocessor(getEnv("PREPROCESSOR", "advanced")),
		OllamaURL:           strings.TrimRight(getEnv("OLLAMA_URL", ""), "/"),
		OllamaModel:         getEnv("OLLAMA_MODEL", "llama3.1"),
		OllamaTimeout:       getEnvSeconds("OLLAMA_TIMEOUT_SECONDS", 20),
		Env:                 normalizeEnv(getEnv("ENV", "dev")),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getEnvSeconds(key string, def int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(parsed) * time.Second
}

func getEnvBool(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizePreprocessor(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "basic":
		return "basic"
	default:
		return "advanced"
	}
}
