// Package config provides configuration management for the QuckAI clustering engine.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"
)

const (
	// DefaultWorkerPort is the default HTTP port for the worker service.
	DefaultWorkerPort = 8787

	// DefaultLabelingModel is the default chat model used to name clusters.
	DefaultLabelingModel = "gpt-4o-mini"

	// DefaultEmbeddingModel is the default embedding model.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultEmbeddingDimensions is the vector size of the default model.
	DefaultEmbeddingDimensions = 1536
)

// Config holds the application configuration.
type Config struct {
	// Worker settings
	WorkerPort int `json:"worker_port"`

	// Embedding provider settings
	EmbeddingAPIKey     string `json:"embedding_api_key"`
	EmbeddingBaseURL    string `json:"embedding_base_url"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`

	// Labeling provider settings
	LabelingAPIKey  string `json:"labeling_api_key"`
	LabelingBaseURL string `json:"labeling_base_url"`
	LabelingModel   string `json:"labeling_model"`
}

// DataDir returns the data directory path (~/.quckai).
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".quckai")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		WorkerPort:          DefaultWorkerPort,
		EmbeddingModel:      DefaultEmbeddingModel,
		EmbeddingDimensions: DefaultEmbeddingDimensions,
		LabelingModel:       DefaultLabelingModel,
	}
}

// Load builds the effective configuration: defaults, overlaid by the settings
// file when present, overlaid by environment variables.
func Load() *Config {
	cfg := Default()

	if data, err := os.ReadFile(SettingsPath()); err == nil {
		// A malformed settings file is ignored rather than fatal.
		_ = json.Unmarshal(data, cfg)
	}

	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUCKAI_WORKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.WorkerPort = port
		}
	}
	if v := os.Getenv("QUCKAI_EMBEDDING_API_KEY"); v != "" {
		cfg.EmbeddingAPIKey = v
	}
	if v := os.Getenv("QUCKAI_EMBEDDING_BASE_URL"); v != "" {
		cfg.EmbeddingBaseURL = v
	}
	if v := os.Getenv("QUCKAI_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("QUCKAI_EMBEDDING_DIMENSIONS"); v != "" {
		if dims, err := strconv.Atoi(v); err == nil && dims > 0 {
			cfg.EmbeddingDimensions = dims
		}
	}
	if v := os.Getenv("QUCKAI_LABELING_API_KEY"); v != "" {
		cfg.LabelingAPIKey = v
	}
	if v := os.Getenv("QUCKAI_LABELING_BASE_URL"); v != "" {
		cfg.LabelingBaseURL = v
	}
	if v := os.Getenv("QUCKAI_LABELING_MODEL"); v != "" {
		cfg.LabelingModel = v
	}
}
