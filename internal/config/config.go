// Package config loads and hot-reloads the aether workspace configuration
// from .aether/config.toml (see spec §6 "Configuration").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"aether/internal/secret"
)

// Config holds all aether daemon configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Inference  InferenceConfig  `toml:"inference"`
	Embeddings EmbeddingsConfig `toml:"embeddings"`
	Search     SearchConfig     `toml:"search"`
	Verify     VerifyConfig     `toml:"verify"`
	Storage    StorageConfig    `toml:"storage"`
}

// GeneralConfig holds daemon-wide settings.
type GeneralConfig struct {
	LogLevel string `toml:"log_level"` // debug, info, warn, error
}

// InferenceConfig selects and configures the SIR-generation provider (C8).
type InferenceConfig struct {
	Provider  string `toml:"provider"`    // mock, qwen3_local, cloud
	Model     string `toml:"model"`
	Endpoint  string `toml:"endpoint"`
	APIKeyEnv string `toml:"api_key_env"` // name of env var holding the secret
	Concurrency int  `toml:"concurrency"` // bounded-dispatch width (C9.4), default 2

	// apiKey is resolved from APIKeyEnv at Load() time, never serialized.
	apiKey secret.String
}

// APIKey returns the resolved secret for the configured provider.
func (c InferenceConfig) APIKey() secret.String { return c.apiKey }

// EmbeddingsConfig configures the optional embedding adjunct used for ranking.
type EmbeddingsConfig struct {
	Enabled       bool   `toml:"enabled"`
	Provider      string `toml:"provider"` // ollama, cloud
	VectorBackend string `toml:"vector_backend"`

	Ollama EmbeddingsOllamaConfig `toml:"ollama"`
	Cloud  EmbeddingsCloudConfig  `toml:"cloud"`
}

type EmbeddingsOllamaConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

type EmbeddingsCloudConfig struct {
	Endpoint  string `toml:"endpoint"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`

	apiKey secret.String
}

func (c EmbeddingsCloudConfig) APIKey() secret.String { return c.apiKey }

// SearchConfig configures C10 ranking.
type SearchConfig struct {
	Reranker             string             `toml:"reranker"` // none, candle, cohere
	CalibratedThresholds map[string]float64 `toml:"calibrated_thresholds"`
}

// VerifyConfig allow-lists commands for the (out-of-scope) verification runner.
type VerifyConfig struct {
	Commands []string `toml:"commands"`
	Mode     string   `toml:"mode"`
}

// StorageConfig configures C3 blob mirroring behavior.
type StorageConfig struct {
	MirrorSIRFiles bool `toml:"mirror_sir_files"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{LogLevel: "info"},
		Inference: InferenceConfig{
			Provider:    "mock",
			Concurrency: 2,
		},
		Embeddings: EmbeddingsConfig{
			Enabled:  false,
			Provider: "ollama",
			Ollama: EmbeddingsOllamaConfig{
				Endpoint: "http://localhost:11434",
				Model:    "embeddinggemma",
			},
		},
		Search: SearchConfig{
			Reranker: "none",
			CalibratedThresholds: map[string]float64{
				"default":    0.5,
				"rust":       0.5,
				"typescript": 0.5,
				"python":     0.5,
			},
		},
		Verify: VerifyConfig{Mode: "strict"},
	}
}

// Path returns the canonical config file path for a workspace root.
func Path(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".aether", "config.toml")
}

// Load reads and parses .aether/config.toml under workspaceRoot. A missing
// file is not an error — Default() is returned instead, matching the
// teacher's "no config file = defaults" convention.
func Load(workspaceRoot string) (*Config, error) {
	cfg := Default()
	path := Path(workspaceRoot)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.resolveSecrets()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// A calibrated_thresholds table in the file replaces the built-in one
	// rather than merging into it.
	defaults := cfg.Search.CalibratedThresholds
	cfg.Search.CalibratedThresholds = nil
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Search.CalibratedThresholds == nil {
		cfg.Search.CalibratedThresholds = defaults
	}

	cfg.resolveSecrets()
	return cfg, nil
}

// resolveSecrets populates the unexported secret fields from the named
// environment variables. Never logged, never serialized back to disk.
func (c *Config) resolveSecrets() {
	if c.Inference.APIKeyEnv != "" {
		if v, ok := os.LookupEnv(c.Inference.APIKeyEnv); ok {
			c.Inference.apiKey = secret.New(v)
		}
	}
	if c.Embeddings.Cloud.APIKeyEnv != "" {
		if v, ok := os.LookupEnv(c.Embeddings.Cloud.APIKeyEnv); ok {
			c.Embeddings.Cloud.apiKey = secret.New(v)
		}
	}
}

// Threshold returns the calibrated search threshold for a language,
// falling back to "default" and finally to 0.5 if neither is configured.
func (c *Config) Threshold(language string) float64 {
	if v, ok := c.Search.CalibratedThresholds[language]; ok {
		return v
	}
	if v, ok := c.Search.CalibratedThresholds["default"]; ok {
		return v
	}
	return 0.5
}
