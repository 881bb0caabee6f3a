// Package config loads the service configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config carries all runtime settings for the sales API.
type Config struct {
	Server struct {
		Addr string `yaml:"addr" env:"SERVER_ADDR"`
	} `yaml:"server"`

	Database struct {
		// DSN empty means the in-memory store is used.
		DSN string `yaml:"dsn" env:"DATABASE_DSN"`
	} `yaml:"database"`

	Auth struct {
		// Secret signs identity tokens. Issue and verify must share it.
		Secret   string `yaml:"secret" env:"JWT_SECRET"`
		TokenTTL string `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	RateLimit struct {
		RequestsPerSecond int `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
		Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST"`
	} `yaml:"rate_limit"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file or environment is
// present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":3001"
	cfg.Auth.TokenTTL = "1h"
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.RateLimit.RequestsPerSecond = 50
	cfg.RateLimit.Burst = 100
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("auth secret is required (set auth.secret or JWT_SECRET)")
	}
	return cfg, nil
}

// TokenTTL parses the configured token validity window, defaulting to one
// hour on absence or parse failure.
func (c *Config) TokenTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil || ttl <= 0 {
		return time.Hour
	}
	return ttl
}
