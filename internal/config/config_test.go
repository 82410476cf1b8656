package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Inference.Provider)
	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Equal(t, 2, cfg.Inference.Concurrency)
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".aether"), 0755))
	contents := `
[general]
log_level = "debug"

[inference]
provider = "cloud"
model = "my-model"
endpoint = "https://example.com/v1/sir"
api_key_env = "AETHER_TEST_KEY"
concurrency = 4

[search]
reranker = "cohere"
[search.calibrated_thresholds]
default = 0.4
rust = 0.6
`
	require.NoError(t, os.WriteFile(Path(dir), []byte(contents), 0644))

	t.Setenv("AETHER_TEST_KEY", "super-secret")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, "cloud", cfg.Inference.Provider)
	assert.Equal(t, 4, cfg.Inference.Concurrency)
	assert.Equal(t, "super-secret", cfg.Inference.APIKey().Reveal())
	assert.Equal(t, "[REDACTED]", cfg.Inference.APIKey().String())
	assert.Equal(t, 0.6, cfg.Threshold("rust"))
	assert.Equal(t, 0.4, cfg.Threshold("typescript"))
}

func TestThresholdFallsBackToDefault(t *testing.T) {
	cfg := Default()
	cfg.Search.CalibratedThresholds = map[string]float64{"default": 0.7}
	assert.Equal(t, 0.7, cfg.Threshold("python"))
}
