package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// RootsConfig overrides the directories each phase scans.
type RootsConfig struct {
	Files   []string `mapstructure:"files"`
	Apps    []string `mapstructure:"apps"`
	Configs []string `mapstructure:"configs"`
}

// LimitOverrides adjusts individual computed limits. Zero values defer to
// the limits calculator.
type LimitOverrides struct {
	MaxAppEntries int `mapstructure:"max_app_entries"`
	MaxDepth      int `mapstructure:"max_depth"`
}

// Config represents the application configuration.
type Config struct {
	Roots   RootsConfig    `mapstructure:"roots"`
	Exclude []string       `mapstructure:"exclude"`
	Limits  LimitOverrides `mapstructure:"limits"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/movewise/config.yaml
//   - $HOME/.config/movewise/config.yaml
//
// Environment variables are prefixed with MOVEWISE_
// (e.g. MOVEWISE_LOGGING_LEVEL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "movewise"))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "movewise"))

	v.SetEnvPrefix("MOVEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default values on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("limits.max_app_entries", DefaultMaxAppEntries)
	v.SetDefault("limits.max_depth", DefaultMaxDepth)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
}
