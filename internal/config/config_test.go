package config

import (
	"testing"

	"github.com/MeKo-Tech/pocrop/internal/layout"
	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/MeKo-Tech/pocrop/internal/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.InDelta(t, 20.0, cfg.Layout.GapThreshold, 1e-9)
	assert.InDelta(t, 10.0, cfg.Margins.LowerPercentile, 1e-9)
	assert.InDelta(t, 90.0, cfg.Margins.UpperPercentile, 1e-9)
	assert.Equal(t, "percentile", cfg.Margins.Strategy)
	assert.Equal(t, "auto", cfg.Margins.MirrorCorrection)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"output format", func(c *Config) { c.Output.Format = "csv" }, "invalid output format"},
		{"strategy", func(c *Config) { c.Margins.Strategy = "mode" }, "margins.strategy"},
		{"mirror", func(c *Config) { c.Margins.MirrorCorrection = "sometimes" }, "margins.mirror_correction"},
		{"percentiles", func(c *Config) { c.Margins.UpperPercentile = 120 }, "invalid upper percentile"},
		{"workers", func(c *Config) { c.Margins.Workers = -2 }, "invalid workers"},
		{"gap threshold", func(c *Config) { c.Layout.GapThreshold = -1 }, "invalid gap threshold"},
		{"divisor", func(c *Config) { c.Layout.HeaderFooterDivisor = 0 }, "divisor"},
		{"row tolerance", func(c *Config) { c.Reader.RowTolerance = -3 }, "row tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Margins.Strategy = "median"
	cfg.Margins.MirrorCorrection = "never"
	cfg.Margins.Workers = 3
	cfg.Margins.TopPadding = 12
	cfg.Layout.GapThreshold = 25

	assert.Equal(t, layout.Config{
		GapThreshold:         25,
		NewlineThreshold:     3,
		NoiseWidth:           3,
		MinBlockWidth:        0.01,
		HeaderFooterDivisor:  3,
		HeaderFooterMinCount: 2,
	}, cfg.ToLayoutConfig())

	opts, err := cfg.ToMarginsOptions()
	require.NoError(t, err)
	assert.Equal(t, margins.StrategyMedian, opts.Parity.Strategy)
	assert.Equal(t, margins.MirrorNever, opts.Parity.Mirror)
	assert.InDelta(t, 12.0, opts.Parity.TopPadding, 1e-9)
	assert.Equal(t, 3, opts.Workers)
	assert.InDelta(t, 25.0, opts.Layout.GapThreshold, 1e-9)

	creds := &pdf.PasswordCredentials{UserPassword: "secret"}
	rc := cfg.ToReaderConfig(creds)
	assert.InDelta(t, 2.0, rc.RowTolerance, 1e-9)
	assert.InDelta(t, 1.5, rc.ParagraphGap, 1e-9)
	assert.Same(t, creds, rc.Credentials)
}

func TestDefaultsMatchLibraryDefaults(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.ToMarginsOptions()
	require.NoError(t, err)

	assert.Equal(t, margins.DefaultOptions().Layout, opts.Layout)
	assert.Equal(t, margins.DefaultOptions().Parity, opts.Parity)
	assert.Equal(t, pdf.DefaultReaderConfig(), cfg.ToReaderConfig(nil))
}

func TestConfigYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.Textfile = "/var/lib/node_exporter/pocrop.prom"

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level: info")
	assert.Contains(t, string(data), "gap_threshold: 20")
	assert.Contains(t, string(data), "mirror_correction: auto")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)
}
