package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, loaded from the environment
type Config struct {
	// Host and Port for the HTTP/websocket listener
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"3001"`

	// ReapGrace is how long fully-disconnected sessions survive
	ReapGrace time.Duration `env:"REAP_GRACE" envDefault:"30s"`

	// RedisURL enables the inter-server relay stub when set
	RedisURL string `env:"REDIS_URL"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
