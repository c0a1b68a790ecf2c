package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Export      ExportConfig      `toml:"export"`
}

// CredentialsConfig contains Spotify API credentials for the client credentials grant.
type CredentialsConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// APIConfig contains request pacing and retry settings.
type APIConfig struct {
	Market          string  `toml:"market"`            // default market code (ISO 3166-1 alpha-2)
	MaxAttempts     int     `toml:"max_attempts"`      // retry ceiling per request
	MinIntervalSecs float64 `toml:"min_interval_secs"` // minimum seconds between outbound requests
	TimeoutSecs     int     `toml:"timeout_secs"`      // per-request socket timeout
}

// ExportConfig contains output settings for the export commands.
type ExportConfig struct {
	Format    string `toml:"format"`     // csv or json
	OutputDir string `toml:"output_dir"` // base directory for export files
	Workers   int    `toml:"workers"`    // worker pool size for multi-artist catalogs
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
