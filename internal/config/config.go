// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for the lottery service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"LOTPOOL_ADDR" envDefault:":8080"`
	// StorageDriver selects the store backend: memory, sqlite or bolt.
	StorageDriver string `env:"LOTPOOL_STORAGE_DRIVER" envDefault:"memory"`
	// StoragePath is the database file for the sqlite and bolt drivers.
	StoragePath string `env:"LOTPOOL_STORAGE_PATH" envDefault:"lotpool.db"`
	// RandomSource selects the winner-selection source: weak or secure.
	RandomSource string `env:"LOTPOOL_RANDOM_SOURCE" envDefault:"weak"`
	// Verbose enables verbose logging.
	Verbose bool `env:"LOTPOOL_VERBOSE" envDefault:"false"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
