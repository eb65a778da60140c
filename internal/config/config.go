// Package config loads server settings from LOSTFOUND_ environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "LOSTFOUND"

// Config holds the server configuration. Command-line flags override it.
type Config struct {
	DBPath    string `envconfig:"DB_PATH" default:"lostfound.sqlite3"`
	Addr      string `envconfig:"ADDR" default:":8080"`
	AdminUser string `envconfig:"ADMIN_USER" default:"Admin"`
	LogPath   string `envconfig:"LOG_PATH"`

	// Tracing is disabled when empty.
	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`

	MaxImageBytes int64         `envconfig:"MAX_IMAGE_BYTES" default:"5242880"`
	TokenExpiry   time.Duration `envconfig:"TOKEN_EXPIRY" default:"24h"`

	// One login attempt per LoginRate per client, with bursts of LoginBurst.
	LoginRate  time.Duration `envconfig:"LOGIN_RATE" default:"6s"`
	LoginBurst int           `envconfig:"LOGIN_BURST" default:"5"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("max image size must be positive, got %d", c.MaxImageBytes)
	}
	if c.TokenExpiry <= 0 {
		return fmt.Errorf("token expiry must be positive, got %s", c.TokenExpiry)
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return fmt.Errorf("login rate and burst must be positive")
	}
	return nil
}
