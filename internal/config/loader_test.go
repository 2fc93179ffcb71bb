package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pocrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewLoaderWithViper(t *testing.T) {
	v := viper.New()
	loader := NewLoaderWithViper(v)
	require.NotNil(t, loader)
	assert.Same(t, v, loader.GetViper())
}

func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoaderWithViper(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pocrop.yaml"), []byte("log_level: warn\n"), 0o600))

	loader := NewLoaderWithViper(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Contains(t, loader.GetConfigFileUsed(), "pocrop.yaml")
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
verbose: true
layout:
  gap_threshold: 30
  noise_width: 5
margins:
  strategy: envelope
  mirror_correction: always
  workers: 2
output:
  format: json
metrics:
  textfile: /tmp/pocrop.prom
`)

	cfg, err := NewLoaderWithViper(viper.New()).LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Verbose)
	assert.InDelta(t, 30.0, cfg.Layout.GapThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Layout.NoiseWidth)
	// Unset keys keep their defaults.
	assert.InDelta(t, 3.0, cfg.Layout.NewlineThreshold, 1e-9)
	assert.Equal(t, "envelope", cfg.Margins.Strategy)
	assert.Equal(t, "always", cfg.Margins.MirrorCorrection)
	assert.Equal(t, 2, cfg.Margins.Workers)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "/tmp/pocrop.prom", cfg.Metrics.Textfile)
}

func TestLoadWithFileErrors(t *testing.T) {
	_, err := NewLoaderWithViper(viper.New()).LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	invalid := writeConfig(t, "output:\n  format: xml\n")
	_, err = NewLoaderWithViper(viper.New()).LoadWithFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	malformed := writeConfig(t, "log_level: [unterminated\n")
	_, err = NewLoaderWithViper(viper.New()).LoadWithFile(malformed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("POCROP_LOG_LEVEL", "error")
	t.Setenv("POCROP_MARGINS_TOP_PADDING", "7.5")
	t.Setenv("POCROP_LAYOUT_GAP_THRESHOLD", "12")

	path := writeConfig(t, "log_level: debug\n")
	cfg, err := NewLoaderWithViper(viper.New()).LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.InDelta(t, 7.5, cfg.Margins.TopPadding, 1e-9)
	assert.InDelta(t, 12.0, cfg.Layout.GapThreshold, 1e-9)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pocrop.yaml")

	require.NoError(t, GenerateDefaultConfigFile(path, false))

	cfg, err := NewLoaderWithViper(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)

	err = GenerateDefaultConfigFile(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, GenerateDefaultConfigFile(path, true))
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()

	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, filepath.Join("/xdg", "pocrop"))
	assert.Equal(t, "/etc/pocrop", paths[len(paths)-1])
}
