package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the API server, loaded from the
// environment.
type Config struct {
	Addr            string        `env:"GATEFOLD_ADDR" envDefault:":8080"`
	PostgresDSN     string        `env:"GATEFOLD_PG_DSN"`
	StaffAuthSecret string        `env:"GATEFOLD_AUTH_SECRET"`
	StaffSessionTTL time.Duration `env:"GATEFOLD_SESSION_TTL" envDefault:"12h"`
	RateBurst       int           `env:"GATEFOLD_RATE_BURST" envDefault:"40"`
	RatePerSecond   int           `env:"GATEFOLD_RATE_PER_SEC" envDefault:"20"`
	MaxBodyBytes    int64         `env:"GATEFOLD_MAX_BODY_BYTES" envDefault:"1048576"`
	ShutdownTimeout time.Duration `env:"GATEFOLD_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
