// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config for the serve command.
type Config struct {
	Addr          string        `env:"ECHOHEALTH_ADDR" envDefault:":8080"`
	DBPath        string        `env:"ECHOHEALTH_DB"`
	RedisAddr     string        `env:"ECHOHEALTH_REDIS_ADDR"`
	RedisPassword string        `env:"ECHOHEALTH_REDIS_PASSWORD"`
	RedisDB       int           `env:"ECHOHEALTH_REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"ECHOHEALTH_SESSION_TTL" envDefault:"24h"`
	LogLevel      string        `env:"ECHOHEALTH_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment. DBPath falls back to the per-user default
// when unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// DefaultDBPath is where the embedded database lives unless overridden.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".echohealth", "echohealth.db")
}
