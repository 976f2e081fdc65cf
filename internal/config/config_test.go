package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "combo-engine", cfg.Service.Name)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
	assert.Equal(t, defaultConcurrency, cfg.Service.Concurrency)
	assert.Equal(t, defaultESWriteRPS, cfg.Service.ESWriteRPS)
	assert.Equal(t, defaultDBWriteRPS, cfg.Service.DBWriteRPS)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, defaultMaxCombos, cfg.Engine.MaxCombos)
	assert.InDelta(t, defaultNoiseThreshold, cfg.Engine.NoiseThreshold, 1e-9)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, defaultESTimeoutSec*time.Second, cfg.Elasticsearch.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMBO_ENGINE_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("ENGINE_MAX_COMBOS", "250")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 250, cfg.Engine.MaxCombos)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
service:
  port: 7000
engine:
  max_combos: 123
  stopwords: ["the", "and"]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Service.Port)
	assert.Equal(t, 123, cfg.Engine.MaxCombos)
	assert.Equal(t, []string{"the", "and"}, cfg.Engine.Stopwords)
	// Untouched sections still get defaults.
	assert.Equal(t, defaultDBMaxConns, cfg.Database.MaxConnections)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  port: 7000\n"), 0o600))

	t.Setenv("COMBO_ENGINE_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Service.Port)
}
