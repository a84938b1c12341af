package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TorBox  TorBoxConfig  `toml:"torbox"`
	Sync    SyncConfig    `toml:"sync"`
	Archive ArchiveConfig `toml:"archive"`
	Logs    LogsConfig    `toml:"logs"`
}

// TorBoxConfig contains TorBox API credentials and endpoint settings.
type TorBoxConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// SyncConfig contains pipeline tuning for backup imports.
type SyncConfig struct {
	InputFile             string `toml:"input_file"`
	SubmitIntervalSeconds int    `toml:"submit_interval_seconds"`
	MaxRetries            int    `toml:"max_retries"`
	RetryBackoffSeconds   int    `toml:"retry_backoff_seconds"`
	PageSize              int    `toml:"page_size"`
}

// ArchiveConfig contains run-history database settings.
type ArchiveConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogsConfig contains per-run log file settings.
type LogsConfig struct {
	Directory string `toml:"directory"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindConfigFile resolves the configuration file path.
//
// Order: the explicit path when given, then ./config.toml, then
// tbsync/config.toml under the XDG config directories.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrMissingConfig, explicit)
		}
		return explicit, nil
	}

	if _, err := os.Stat("config.toml"); err == nil {
		return "config.toml", nil
	}

	if path, err := xdg.SearchConfigFile(filepath.Join("tbsync", "config.toml")); err == nil {
		return path, nil
	}

	return "", ErrMissingConfig
}
