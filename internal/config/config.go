// Package config provides configuration management for topicforge.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// DefaultWorkerPort is the default HTTP port for the worker service.
	DefaultWorkerPort = 8085

	// DefaultMaxConns is the default database connection pool size.
	DefaultMaxConns = 10

	// DefaultNamingConcurrency bounds the per-cluster naming fan-out.
	DefaultNamingConcurrency = 4

	// DefaultHTTPTimeout applies to inbound requests and collaborator calls.
	DefaultHTTPTimeout = 60 * time.Second
)

// Config holds the application configuration.
type Config struct {
	// Worker settings
	WorkerPort  int
	HTTPTimeout time.Duration

	// Database settings
	DatabaseDSN string
	MaxConns    int

	// Embedding collaborator (OpenAI-compatible)
	EmbeddingBaseURL    string
	EmbeddingAPIKey     string
	EmbeddingModel      string
	EmbeddingDimensions int

	// LLM collaborator for clustering and naming
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Engine tuning
	NamingConcurrency  int
	JaccardThreshold   float64
	HistMergeThreshold float64
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// DataDir returns the data directory path (~/.topicforge).
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".topicforge")
}

// SettingsPath returns the settings file path. TOPICFORGE_SETTINGS overrides
// the default location.
func SettingsPath() string {
	if p := os.Getenv("TOPICFORGE_SETTINGS"); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "settings.json")
}

// EnsureSettings creates a default settings file if it doesn't exist.
func EnsureSettings() error {
	path := SettingsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // File exists
	}

	defaultSettings := `{
  "TOPICFORGE_WORKER_PORT": 8085,
  "TOPICFORGE_DATABASE_DSN": "postgres://localhost:5432/topicforge?sslmode=disable",
  "TOPICFORGE_EMBEDDING_MODEL": "text-embedding-3-small",
  "TOPICFORGE_NAMING_CONCURRENCY": 4
}
`
	return os.WriteFile(path, []byte(defaultSettings), 0600)
}

// Default returns a Config with default values. Thresholds default to zero
// here; the engine substitutes its own canonical cutoffs for zero values.
func Default() *Config {
	return &Config{
		WorkerPort:        DefaultWorkerPort,
		HTTPTimeout:       DefaultHTTPTimeout,
		DatabaseDSN:       "postgres://localhost:5432/topicforge?sslmode=disable",
		MaxConns:          DefaultMaxConns,
		NamingConcurrency: DefaultNamingConcurrency,
	}
}

// Load builds the configuration in three layers: defaults, the JSON settings
// file merged over them, then TOPICFORGE_* environment overrides on top.
func Load() *Config {
	cfg := Default()
	applySettings(cfg)
	applyEnv(cfg)
	return cfg
}

// applySettings merges the settings file over the defaults. Keys use the same
// names as the environment variables. A missing or malformed file leaves the
// defaults untouched.
func applySettings(cfg *Config) {
	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		return
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return
	}

	if v, ok := settings["TOPICFORGE_WORKER_PORT"].(float64); ok && v > 0 {
		cfg.WorkerPort = int(v)
	}
	if v, ok := settings["TOPICFORGE_DATABASE_DSN"].(string); ok && v != "" {
		cfg.DatabaseDSN = v
	}
	if v, ok := settings["TOPICFORGE_MAX_CONNS"].(float64); ok && v > 0 {
		cfg.MaxConns = int(v)
	}
	if v, ok := settings["TOPICFORGE_HTTP_TIMEOUT_SECONDS"].(float64); ok && v > 0 {
		cfg.HTTPTimeout = time.Duration(v) * time.Second
	}
	if v, ok := settings["TOPICFORGE_EMBEDDING_BASE_URL"].(string); ok && v != "" {
		cfg.EmbeddingBaseURL = v
	}
	if v, ok := settings["TOPICFORGE_EMBEDDING_API_KEY"].(string); ok && v != "" {
		cfg.EmbeddingAPIKey = v
	}
	if v, ok := settings["TOPICFORGE_EMBEDDING_MODEL"].(string); ok && v != "" {
		cfg.EmbeddingModel = v
	}
	if v, ok := settings["TOPICFORGE_EMBEDDING_DIMENSIONS"].(float64); ok && v > 0 {
		cfg.EmbeddingDimensions = int(v)
	}
	if v, ok := settings["TOPICFORGE_LLM_BASE_URL"].(string); ok && v != "" {
		cfg.LLMBaseURL = v
	}
	if v, ok := settings["TOPICFORGE_LLM_API_KEY"].(string); ok && v != "" {
		cfg.LLMAPIKey = v
	}
	if v, ok := settings["TOPICFORGE_LLM_MODEL"].(string); ok && v != "" {
		cfg.LLMModel = v
	}
	if v, ok := settings["TOPICFORGE_NAMING_CONCURRENCY"].(float64); ok && v > 0 {
		cfg.NamingConcurrency = int(v)
	}
	if v, ok := settings["TOPICFORGE_JACCARD_THRESHOLD"].(float64); ok && v > 0 && v <= 1 {
		cfg.JaccardThreshold = v
	}
	if v, ok := settings["TOPICFORGE_HIST_MERGE_THRESHOLD"].(float64); ok && v > 0 && v <= 1 {
		cfg.HistMergeThreshold = v
	}
}

// applyEnv overlays TOPICFORGE_* environment variables. Env always wins over
// the settings file.
func applyEnv(cfg *Config) {
	if v := envInt("TOPICFORGE_WORKER_PORT"); v > 0 {
		cfg.WorkerPort = v
	}
	if v := os.Getenv("TOPICFORGE_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := envInt("TOPICFORGE_MAX_CONNS"); v > 0 {
		cfg.MaxConns = v
	}
	if v := envInt("TOPICFORGE_HTTP_TIMEOUT_SECONDS"); v > 0 {
		cfg.HTTPTimeout = time.Duration(v) * time.Second
	}

	if v := os.Getenv("TOPICFORGE_EMBEDDING_BASE_URL"); v != "" {
		cfg.EmbeddingBaseURL = v
	}
	if v := os.Getenv("TOPICFORGE_EMBEDDING_API_KEY"); v != "" {
		cfg.EmbeddingAPIKey = v
	}
	if v := os.Getenv("TOPICFORGE_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := envInt("TOPICFORGE_EMBEDDING_DIMENSIONS"); v > 0 {
		cfg.EmbeddingDimensions = v
	}

	if v := os.Getenv("TOPICFORGE_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("TOPICFORGE_LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("TOPICFORGE_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}

	if v := envInt("TOPICFORGE_NAMING_CONCURRENCY"); v > 0 {
		cfg.NamingConcurrency = v
	}
	if v, ok := envFloat("TOPICFORGE_JACCARD_THRESHOLD"); ok && v > 0 && v <= 1 {
		cfg.JaccardThreshold = v
	}
	if v, ok := envFloat("TOPICFORGE_HIST_MERGE_THRESHOLD"); ok && v > 0 && v <= 1 {
		cfg.HistMergeThreshold = v
	}
}

// Get returns the global configuration, loading it once.
func Get() *Config {
	configOnce.Do(func() {
		globalConfig = Load()
	})
	return globalConfig
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
