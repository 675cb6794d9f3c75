// Package config handles runtime configuration for the waitlist API.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all runtime configuration.
type Config struct {
	// HTTP
	ListenAddr string `koanf:"listen_addr"`

	// Admin passphrase. No default: when empty the admin endpoint fails
	// closed at request time rather than accepting any password.
	AdminPassword string `koanf:"admin_password"`

	// Store selects the backend: memory, redis, or bolt.
	Store         string `koanf:"store"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`
	BoltPath      string `koanf:"bolt_path"`

	// RateLimit is the accepted-signups-per-IP cap per wall-clock hour.
	RateLimit int `koanf:"rate_limit"`

	// Operational
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	MetricsAddr     string        `koanf:"metrics_addr"` // "" = disabled
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// defaults is the lowest-priority layer.
var defaults = map[string]any{
	"listen_addr":      ":8080",
	"admin_password":   "",
	"store":            "memory",
	"redis_addr":       "localhost:6379",
	"redis_password":   "",
	"redis_db":         0,
	"redis_prefix":     "waitlist:",
	"bolt_path":        "waitlist.db",
	"rate_limit":       5,
	"log_level":        "info",
	"log_format":       "json",
	"metrics_addr":     "",
	"shutdown_timeout": 10 * time.Second,
}

// Load reads configuration from (lowest → highest priority):
//  1. Built-in defaults
//  2. YAML file at CONFIG_FILE env var path (if set)
//  3. Environment variables (always highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults.
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// Layer 2: optional YAML file.
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", cfgFile, err)
		}
	}

	// Layer 3: environment variables.
	// Transform: "ADMIN_PASSWORD" → "admin_password".
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "memory", "redis", "bolt":
	default:
		return fmt.Errorf("config: unknown store backend %q (want memory, redis, or bolt)", c.Store)
	}
	if c.Store == "bolt" && c.BoltPath == "" {
		return fmt.Errorf("config: bolt_path is required for the bolt store")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config: rate_limit must be positive, got %d", c.RateLimit)
	}
	return nil
}
