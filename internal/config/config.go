// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package config loads and validates StreamVault configuration from layered
// sources: struct defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the StreamVault server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Signing   SigningConfig   `koanf:"signing"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// BaseURL is the externally reachable base used when minting stream
	// URLs, e.g. "https://media.example.com".
	BaseURL string `koanf:"base_url" validate:"required"`
}

// StorageConfig configures on-disk media file storage.
type StorageConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// DatabaseConfig configures the embedded Badger store holding the media
// catalog, the view log, and admin accounts.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`

	// InMemory runs Badger without disk persistence. Used by tests.
	InMemory bool `koanf:"in_memory"`
}

// AuthConfig configures admin authentication.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"min=1m"`
}

// SigningConfig configures stream link signing. Changing Secret invalidates
// every previously issued unexpired link.
type SigningConfig struct {
	Secret  string        `koanf:"secret" validate:"required"`
	LinkTTL time.Duration `koanf:"link_ttl" validate:"min=1s"`
}

// RateLimitConfig configures the per-client sliding-window limiter guarding
// the view-logging path.
type RateLimitConfig struct {
	Requests      int           `koanf:"requests" validate:"min=1"`
	Window        time.Duration `koanf:"window" validate:"min=1s"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=1s"`
	Disabled      bool          `koanf:"disabled"`
}

// CacheConfig configures the Redis analytics cache. An empty RedisURL or an
// unreachable backend disables caching without failing startup.
type CacheConfig struct {
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl" validate:"min=1s"`
	Timeout  time.Duration `koanf:"timeout" validate:"min=100ms"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns a Config with development-grade defaults. Production
// deployments override the secrets via environment or config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
			BaseURL: "http://127.0.0.1:8080",
		},
		Storage: StorageConfig{
			Dir: "./storage",
		},
		Database: DatabaseConfig{
			Path: "./data/streamvault",
		},
		Auth: AuthConfig{
			JWTSecret: "dev-jwt-secret",
			TokenTTL:  time.Hour,
		},
		Signing: SigningConfig{
			Secret:  "dev-stream-secret",
			LinkTTL: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Requests:      10,
			Window:        time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Cache: CacheConfig{
			RedisURL: "redis://localhost:6379/0",
			TTL:      5 * time.Minute,
			Timeout:  3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
