package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/academic-assistant/internal/config"
)

var envKeys = []string{
	"SERVER_ADDR",
	"SERVER_READ_TIMEOUT",
	"SERVER_WRITE_TIMEOUT",
	"SERVER_SHUTDOWN_TIMEOUT",
	"CORPUS_PATH",
	"RETRIEVAL_TOP_K",
	"RETRIEVAL_THRESHOLD",
	"QUERY_LOG_SIZE",
	"LLM_PROVIDER",
	"LLM_BASE_URL",
	"LLM_MODEL",
	"LLM_API_KEY",
	"LLM_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"LOG_FILE",
	"LOG_REPORT_CALLER",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "", cfg.Corpus.Path)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 0.1, cfg.Retrieval.Threshold)
	assert.Equal(t, 100, cfg.Retrieval.QueryLogSize)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Log.ReportCaller)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"SERVER_ADDR":         ":9090",
		"CORPUS_PATH":         "/srv/kb.json",
		"RETRIEVAL_TOP_K":     "5",
		"RETRIEVAL_THRESHOLD": "0.25",
		"QUERY_LOG_SIZE":      "10",
		"LLM_PROVIDER":        "gemini",
		"LLM_MODEL":           "gemini-2.0-flash",
		"LLM_API_KEY":         "secret123",
		"LLM_TIMEOUT":         "5s",
		"LOG_LEVEL":           "debug",
		"LOG_FORMAT":          "json",
		"LOG_FILE":            "system_logs.log",
		"LOG_REPORT_CALLER":   "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/srv/kb.json", cfg.Corpus.Path)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 0.25, cfg.Retrieval.Threshold)
	assert.Equal(t, 10, cfg.Retrieval.QueryLogSize)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "secret123", cfg.LLM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "system_logs.log", cfg.Log.File)
	assert.True(t, cfg.Log.ReportCaller)
}

func TestValidateRejectsNaNThresholdFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETRIEVAL_THRESHOLD", "NaN")

	cfg := config.Load()

	require.True(t, math.IsNaN(cfg.Retrieval.Threshold))
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"Defaults", func(c *config.Config) {}, false},
		{"Threshold zero", func(c *config.Config) { c.Retrieval.Threshold = 0 }, false},
		{"Threshold one", func(c *config.Config) { c.Retrieval.Threshold = 1 }, false},
		{"Threshold above one", func(c *config.Config) { c.Retrieval.Threshold = 1.5 }, true},
		{"Negative threshold", func(c *config.Config) { c.Retrieval.Threshold = -0.1 }, true},
		{"NaN threshold", func(c *config.Config) { c.Retrieval.Threshold = math.NaN() }, true},
		{"Negative top_k", func(c *config.Config) { c.Retrieval.TopK = -1 }, true},
		{"Empty address", func(c *config.Config) { c.Server.Addr = "" }, true},
		{"Negative log size", func(c *config.Config) { c.Retrieval.QueryLogSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Load()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "from-environment")
	os.Unsetenv("LLM_MODEL")
	t.Setenv("LLM_PROVIDER", "openai")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LLM_MODEL=from-dotenv\nLLM_PROVIDER=gemini\n"), 0644))

	require.NoError(t, config.LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg := config.Load()
	assert.Equal(t, "from-dotenv", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.LLM.Provider, "existing variables are not overridden")
}

func TestGetStringEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue string
		expected     string
	}{
		{"Existing env var", "TEST_STRING", "test_value", "default", "test_value"},
		{"Empty env var", "EMPTY_VAR", "", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			assert.Equal(t, tt.expected, config.GetStringEnv(tt.key, tt.defaultValue))
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{"Valid int", "42", 10, 42},
		{"Invalid int", "not_a_number", 10, 10},
		{"Negative int", "-5", 10, -5},
		{"Zero", "0", 10, 0},
		{"Unset", "", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetIntEnv("TEST_INT", tt.defaultValue))
		})
	}
}

func TestGetFloatEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue float64
		expected     float64
	}{
		{"Valid float", "0.35", 0.1, 0.35},
		{"Integer", "1", 0.1, 1},
		{"Invalid float", "high", 0.1, 0.1},
		{"Unset", "", 0.1, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_FLOAT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetFloatEnv("TEST_FLOAT", tt.defaultValue))
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{"True string", "true", false, true},
		{"False string", "false", true, false},
		{"1 (true)", "1", false, true},
		{"Invalid bool", "invalid", true, true},
		{"Unset", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.expected, config.GetBoolEnv("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{"Seconds", "5s", 1 * time.Second, 5 * time.Second},
		{"Combined", "1h30m", 1 * time.Second, 90 * time.Minute},
		{"Invalid duration", "invalid", 5 * time.Second, 5 * time.Second},
		{"Unset", "", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)
			assert.Equal(t, tt.expected, config.GetDurationEnv("TEST_DURATION", tt.defaultValue))
		})
	}
}
