// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the launchpad services.
type Config struct {
	// Ledger access
	HorizonURL      string `env:"HORIZON_URL" envDefault:"https://horizon-testnet.stellar.org"`
	ContractAddress string `env:"CONTRACT_ADDRESS"`

	// Storage
	PostgresDSN   string `env:"POSTGRES_DSN"`
	ClickhouseDSN string `env:"CLICKHOUSE_DSN"`
	UseMemory     bool   `env:"USE_MEMORY" envDefault:"false"`

	// Polling cadence
	PageSize      int           `env:"PAGE_SIZE" envDefault:"200"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	PageInterval  time.Duration `env:"PAGE_INTERVAL" envDefault:"500ms"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"10s"`

	// HTTP surfaces
	APIAddr     string `env:"API_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// CORS allowlist for the query API; empty means allow all origins.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads configuration from a .env file (if present) and the process
// environment. Environment variables win over the file.
func Load() (*Config, error) {
	// godotenv does not overwrite variables already set in the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings a running indexer cannot do without.
func (c *Config) Validate() error {
	if c.ContractAddress == "" {
		return errors.New("CONTRACT_ADDRESS is required")
	}
	if c.HorizonURL == "" {
		return errors.New("HORIZON_URL is required")
	}
	if !c.UseMemory && (c.PostgresDSN == "" || c.ClickhouseDSN == "") {
		return errors.New("POSTGRES_DSN and CLICKHOUSE_DSN are required (set USE_MEMORY=true for in-memory storage)")
	}
	return nil
}
