// Package config loads the smite-stats YAML configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gamestats/smite-stats/pkg/smite"
)

// Config holds the complete tool configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Harvest  HarvestConfig  `yaml:"harvest"`
}

// APIConfig configures the Smite API client.
type APIConfig struct {
	// DevID is the Hi-Rez developer id.
	DevID string `yaml:"dev_id"`

	// AuthKey is the shared secret used to sign requests.
	AuthKey string `yaml:"auth_key"`

	// Endpoint overrides the API endpoint. Defaults to the PC endpoint.
	Endpoint string `yaml:"endpoint"`

	// SessionFile is where the session blob is persisted between runs.
	SessionFile string `yaml:"session_file"`
}

// DatabaseConfig configures the optional match archive.
type DatabaseConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// HarvestConfig configures default harvesting behavior.
type HarvestConfig struct {
	// Queue is the queue id to harvest.
	Queue int `yaml:"queue"`

	// Hours restricts harvesting to specific hours of the day. Empty
	// means the whole day in one listing call (hour -1).
	Hours []int `yaml:"hours"`
}

// Load reads a config file, expands ${VAR} environment references, parses
// it, and applies defaults. The path comes from command line arguments.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is from CLI args
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = smite.DefaultEndpoint
	}
	if cfg.API.SessionFile == "" {
		cfg.API.SessionFile = ".smite-session"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.API.DevID == "" {
		errs = append(errs, "api.dev_id is required")
	}
	if c.API.AuthKey == "" {
		errs = append(errs, "api.auth_key is required")
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required when the database is enabled")
	}
	for _, h := range c.Harvest.Hours {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Sprintf("harvest.hours entry %d is outside 0..23", h))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
