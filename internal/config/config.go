package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the assistant service
type Config struct {
	Server    ServerConfig
	Corpus    CorpusConfig
	Retrieval RetrievalConfig
	LLM       LLMConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// CorpusConfig points at the knowledge base. An empty path selects the
// built-in corpus.
type CorpusConfig struct {
	Path string
}

// RetrievalConfig holds ranking defaults and the query audit size
type RetrievalConfig struct {
	TopK         int
	Threshold    float64
	QueryLogSize int
}

type LLMConfig struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

type LogConfig struct {
	Level        string
	Format       string
	File         string
	ReportCaller bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            GetStringEnv("SERVER_ADDR", ":8000"),
			ReadTimeout:     GetDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    GetDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: GetDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Corpus: CorpusConfig{
			Path: GetStringEnv("CORPUS_PATH", ""),
		},
		Retrieval: RetrievalConfig{
			TopK:         GetIntEnv("RETRIEVAL_TOP_K", 3),
			Threshold:    GetFloatEnv("RETRIEVAL_THRESHOLD", 0.1),
			QueryLogSize: GetIntEnv("QUERY_LOG_SIZE", 100),
		},
		LLM: LLMConfig{
			Provider: GetStringEnv("LLM_PROVIDER", "ollama"),
			BaseURL:  GetStringEnv("LLM_BASE_URL", ""),
			Model:    GetStringEnv("LLM_MODEL", "qwen3:1.7b"),
			APIKey:   GetStringEnv("LLM_API_KEY", ""),
			Timeout:  GetDurationEnv("LLM_TIMEOUT", 60*time.Second),
		},
		Log: LogConfig{
			Level:        GetStringEnv("LOG_LEVEL", "info"),
			Format:       GetStringEnv("LOG_FORMAT", "text"),
			File:         GetStringEnv("LOG_FILE", ""),
			ReportCaller: GetBoolEnv("LOG_REPORT_CALLER", false),
		},
	}
}

// LoadDotEnv reads .env style files into the environment. Variables that
// are already set win, and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval top_k must be >= 0, got %d", c.Retrieval.TopK)
	}
	if math.IsNaN(c.Retrieval.Threshold) || c.Retrieval.Threshold < 0 || c.Retrieval.Threshold > 1 {
		return fmt.Errorf("retrieval threshold must be within [0, 1], got %v", c.Retrieval.Threshold)
	}
	if c.Retrieval.QueryLogSize < 0 {
		return fmt.Errorf("query log size must be >= 0, got %d", c.Retrieval.QueryLogSize)
	}
	return nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
