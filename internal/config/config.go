// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all server settings.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins lists allowed origins; "*" allows everything.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// AuthSecret enables bearer-token auth when non-empty.
	AuthSecret string `env:"AUTH_SECRET"`

	// AdminPasswordHash is the bcrypt hash the token endpoint checks
	// credentials against. Required when AuthSecret is set.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// TokenTTL is how long issued tokens stay valid.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is folded in first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.AuthSecret != "" && cfg.AdminPasswordHash == "" {
		return Config{}, fmt.Errorf("AUTH_SECRET is set but ADMIN_PASSWORD_HASH is empty")
	}
	return cfg, nil
}
