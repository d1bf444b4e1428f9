// Package config provides configuration management for the watch application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/rocdate"
)

// Config holds all application configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path         string `mapstructure:"path"`
	SnapshotPath string `mapstructure:"snapshot_path"`
}

// SyncConfig holds sync behavior configuration.
type SyncConfig struct {
	// DayCutoverHour: local hours before this count as the prior trading day.
	DayCutoverHour int `mapstructure:"day_cutover_hour"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/disposal-watch"
	}
	return filepath.Join(home, ".config", "disposal-watch")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultConfigDir()
	return &Config{
		Store: StoreConfig{
			Path:         filepath.Join(dir, "watch.db"),
			SnapshotPath: filepath.Join(dir, "watchlist.csv"),
		},
		Sync: SyncConfig{
			DayCutoverHour: rocdate.DefaultCutoverHour,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Console:  true,
			File:     true,
			FilePath: filepath.Join(dir, "logs", "watch.log"),
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("DISPOSAL_WATCH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return nil, fmt.Errorf("creating config template: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "store.path must not be empty")
	}
	if c.Sync.DayCutoverHour < 0 || c.Sync.DayCutoverHour > 23 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "sync.day_cutover_hour %d out of range", c.Sync.DayCutoverHour)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "logging.level %q unknown", c.Logging.Level)
	}
	return nil
}

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	template := `# disposal-watch configuration

[store]
# path = "~/.config/disposal-watch/watch.db"
# snapshot_path = "~/.config/disposal-watch/watchlist.csv"

[sync]
# Hours before this count as the prior trading day.
day_cutover_hour = 6

[logging]
level = "info"
console = true
file = true
`
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(template), 0644)
}
