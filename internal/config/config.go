package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/layout"
	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/MeKo-Tech/pocrop/internal/pdf"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for pocrop. It is loaded from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Layout  LayoutConfig  `mapstructure:"layout" yaml:"layout" json:"layout"`
	Margins MarginsConfig `mapstructure:"margins" yaml:"margins" json:"margins"`
	Reader  ReaderConfig  `mapstructure:"reader" yaml:"reader" json:"reader"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// LayoutConfig contains clustering and header/footer detection settings.
type LayoutConfig struct {
	GapThreshold         float64 `mapstructure:"gap_threshold" yaml:"gap_threshold" json:"gap_threshold"`
	NewlineThreshold     float64 `mapstructure:"newline_threshold" yaml:"newline_threshold" json:"newline_threshold"`
	NoiseWidth           int     `mapstructure:"noise_width" yaml:"noise_width" json:"noise_width"`
	MinBlockWidth        float64 `mapstructure:"min_block_width" yaml:"min_block_width" json:"min_block_width"`
	HeaderFooterDivisor  int     `mapstructure:"header_footer_divisor" yaml:"header_footer_divisor" json:"header_footer_divisor"`
	HeaderFooterMinCount int     `mapstructure:"header_footer_min_count" yaml:"header_footer_min_count" json:"header_footer_min_count"`
}

// MarginsConfig contains parity estimation settings.
type MarginsConfig struct {
	LowerPercentile  float64 `mapstructure:"lower_percentile" yaml:"lower_percentile" json:"lower_percentile"`
	UpperPercentile  float64 `mapstructure:"upper_percentile" yaml:"upper_percentile" json:"upper_percentile"`
	Strategy         string  `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
	TopPadding       float64 `mapstructure:"top_padding" yaml:"top_padding" json:"top_padding"`
	MirrorCorrection string  `mapstructure:"mirror_correction" yaml:"mirror_correction" json:"mirror_correction"`
	Workers          int     `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// ReaderConfig contains glyph grouping settings.
type ReaderConfig struct {
	RowTolerance float64 `mapstructure:"row_tolerance" yaml:"row_tolerance" json:"row_tolerance"`
	ParagraphGap float64 `mapstructure:"paragraph_gap" yaml:"paragraph_gap" json:"paragraph_gap"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// MetricsConfig contains metrics export settings.
type MetricsConfig struct {
	// Textfile is the Prometheus textfile path; empty disables export.
	Textfile string `mapstructure:"textfile" yaml:"textfile" json:"textfile"`
}

var (
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validOutputFormats = []string{"text", "json"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	lc := layout.DefaultConfig()
	mc := margins.DefaultConfig()
	rc := pdf.DefaultReaderConfig()

	return Config{
		LogLevel: "info",
		Verbose:  false,
		Layout: LayoutConfig{
			GapThreshold:         lc.GapThreshold,
			NewlineThreshold:     lc.NewlineThreshold,
			NoiseWidth:           lc.NoiseWidth,
			MinBlockWidth:        lc.MinBlockWidth,
			HeaderFooterDivisor:  lc.HeaderFooterDivisor,
			HeaderFooterMinCount: lc.HeaderFooterMinCount,
		},
		Margins: MarginsConfig{
			LowerPercentile:  mc.LowerPercentile,
			UpperPercentile:  mc.UpperPercentile,
			Strategy:         string(mc.Strategy),
			TopPadding:       mc.TopPadding,
			MirrorCorrection: string(mc.Mirror),
			Workers:          0,
		},
		Reader: ReaderConfig{
			RowTolerance: rc.RowTolerance,
			ParagraphGap: rc.ParagraphGap,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validOutputFormats, ", "))
	}
	if _, err := c.ToMarginsOptions(); err != nil {
		return err
	}
	if err := c.ToReaderConfig(nil).Validate(); err != nil {
		return fmt.Errorf("reader: %w", err)
	}
	return nil
}

// ToLayoutConfig converts the config to the layout configuration.
func (c *Config) ToLayoutConfig() layout.Config {
	return layout.Config{
		GapThreshold:         c.Layout.GapThreshold,
		NewlineThreshold:     c.Layout.NewlineThreshold,
		NoiseWidth:           c.Layout.NoiseWidth,
		MinBlockWidth:        c.Layout.MinBlockWidth,
		HeaderFooterDivisor:  c.Layout.HeaderFooterDivisor,
		HeaderFooterMinCount: c.Layout.HeaderFooterMinCount,
	}
}

// ToMarginsOptions converts the config to validated inference options.
func (c *Config) ToMarginsOptions() (margins.Options, error) {
	strategy, err := margins.ParseStrategy(c.Margins.Strategy)
	if err != nil {
		return margins.Options{}, fmt.Errorf("invalid margins.strategy: %w", err)
	}
	mirror, err := margins.ParseMirrorMode(c.Margins.MirrorCorrection)
	if err != nil {
		return margins.Options{}, fmt.Errorf("invalid margins.mirror_correction: %w", err)
	}

	opts := margins.Options{
		Layout: c.ToLayoutConfig(),
		Parity: margins.Config{
			Strategy:        strategy,
			LowerPercentile: c.Margins.LowerPercentile,
			UpperPercentile: c.Margins.UpperPercentile,
			TopPadding:      c.Margins.TopPadding,
			Mirror:          mirror,
		},
		Workers: c.Margins.Workers,
	}
	if err := opts.Validate(); err != nil {
		return margins.Options{}, err
	}
	return opts, nil
}

// ToReaderConfig converts the config to the PDF reader configuration.
func (c *Config) ToReaderConfig(creds *pdf.PasswordCredentials) pdf.ReaderConfig {
	return pdf.ReaderConfig{
		RowTolerance: c.Reader.RowTolerance,
		ParagraphGap: c.Reader.ParagraphGap,
		Credentials:  creds,
	}
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
