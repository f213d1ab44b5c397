package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds the remote sync API settings.
type APIConfig struct {
	// BaseURL is the root URL of the sync API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP call made by the sync engine.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DatabaseConfig holds local store settings.
type DatabaseConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// SyncConfig holds background sync scheduling settings.
type SyncConfig struct {
	// IntervalSec is how often the runner triggers a sync cycle.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// FocusConfig holds Momentum Mode defaults.
type FocusConfig struct {
	// TravelPreference is "allow_travel" or "home_only".
	TravelPreference string `mapstructure:"travel_preference" yaml:"travel_preference"`
}

// AppConfig is the top-level engine configuration.
type AppConfig struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Focus    FocusConfig    `mapstructure:"focus" yaml:"focus"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mindclear/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mindclear", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			TimeoutSec: 30,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(".", "mindclear.db"),
		},
		Sync: SyncConfig{
			IntervalSec: 120,
		},
		Focus: FocusConfig{
			TravelPreference: string(TravelAllowTravel),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("database.path", filepath.Join(".", "mindclear.db"))
	v.SetDefault("sync.interval_sec", 120)
	v.SetDefault("focus.travel_preference", string(TravelAllowTravel))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.IntervalSec <= 0 {
		cfg.Sync.IntervalSec = 120
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("database", cfg.Database)
	v.Set("sync", cfg.Sync)
	v.Set("focus", cfg.Focus)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
