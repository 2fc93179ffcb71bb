package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "pocrop"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "POCROP"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoaderWithViper creates a loader on a dedicated viper instance.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from the search paths, environment variables and
// defaults, and validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults and env vars apply.
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.decode()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// log_level -> POCROP_LOG_LEVEL, margins.top_padding -> POCROP_MARGINS_TOP_PADDING
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("layout.gap_threshold", defaults.Layout.GapThreshold)
	l.v.SetDefault("layout.newline_threshold", defaults.Layout.NewlineThreshold)
	l.v.SetDefault("layout.noise_width", defaults.Layout.NoiseWidth)
	l.v.SetDefault("layout.min_block_width", defaults.Layout.MinBlockWidth)
	l.v.SetDefault("layout.header_footer_divisor", defaults.Layout.HeaderFooterDivisor)
	l.v.SetDefault("layout.header_footer_min_count", defaults.Layout.HeaderFooterMinCount)

	l.v.SetDefault("margins.lower_percentile", defaults.Margins.LowerPercentile)
	l.v.SetDefault("margins.upper_percentile", defaults.Margins.UpperPercentile)
	l.v.SetDefault("margins.strategy", defaults.Margins.Strategy)
	l.v.SetDefault("margins.top_padding", defaults.Margins.TopPadding)
	l.v.SetDefault("margins.mirror_correction", defaults.Margins.MirrorCorrection)
	l.v.SetDefault("margins.workers", defaults.Margins.Workers)

	l.v.SetDefault("reader.row_tolerance", defaults.Reader.RowTolerance)
	l.v.SetDefault("reader.paragraph_gap", defaults.Reader.ParagraphGap)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)

	l.v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)
}

// GenerateDefaultConfigFile writes the default configuration as YAML. An
// existing file is only replaced when force is set.
func GenerateDefaultConfigFile(filename string, force bool) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if _, err := os.Stat(filename); err == nil && !force {
		return fmt.Errorf("config file already exists: %s", filename)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(filename, data, 0o600)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	paths = append(paths, filepath.Join("/etc", ConfigFileName))

	return paths
}
