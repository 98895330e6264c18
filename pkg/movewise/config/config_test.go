package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultMaxAppEntries, cfg.Limits.MaxAppEntries)
	assert.Equal(t, DefaultMaxDepth, cfg.Limits.MaxDepth)
	assert.Equal(t, DefaultExclusions, cfg.Exclude)
	assert.Empty(t, cfg.Roots.Files)
}

func TestLoadFromFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(configHome, "movewise")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	content := `
roots:
  files:
    - /data/home
  configs:
    - /data/etc
exclude:
  - /data/home/scratch
limits:
  max_app_entries: 50
  max_depth: 4
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/home"}, cfg.Roots.Files)
	assert.Equal(t, []string{"/data/etc"}, cfg.Roots.Configs)
	assert.Equal(t, []string{"/data/home/scratch"}, cfg.Exclude)
	assert.Equal(t, 50, cfg.Limits.MaxAppEntries)
	assert.Equal(t, 4, cfg.Limits.MaxDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep their defaults.
	assert.Empty(t, cfg.Logging.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MOVEWISE_LOGGING_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(configHome, "movewise")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("roots: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}
