// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streamvault/config.yaml",
	"/etc/streamvault/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load reads configuration from layered sources with the precedence
// ENV > config file > defaults, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Bare-number values for duration settings are read as seconds.
	if err := processDurationFields(k); err != nil {
		return nil, fmt.Errorf("failed to process duration fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names to koanf config paths.
// Only listed variables are honored so that unrelated environment noise
// cannot leak into the configuration.
var envMappings = map[string]string{
	"HTTP_HOST":                 "server.host",
	"HTTP_PORT":                 "server.port",
	"SERVER_TIMEOUT":            "server.timeout",
	"BASE_EXTERNAL_URL":         "server.base_url",
	"STORAGE_DIR":               "storage.dir",
	"DATABASE_PATH":             "database.path",
	"JWT_SECRET":                "auth.jwt_secret",
	"TOKEN_TTL":                 "auth.token_ttl",
	"STREAM_SIGNING_SECRET":     "signing.secret",
	"STREAM_LINK_TTL_SECONDS":   "signing.link_ttl",
	"RATE_LIMIT_REQUESTS":       "ratelimit.requests",
	"RATE_LIMIT_WINDOW":         "ratelimit.window",
	"RATE_LIMIT_DISABLED":       "ratelimit.disabled",
	"RATE_LIMIT_SWEEP_INTERVAL": "ratelimit.sweep_interval",
	"REDIS_URL":                 "cache.redis_url",
	"CACHE_TTL":                 "cache.ttl",
	"CACHE_TIMEOUT":             "cache.timeout",
	"LOG_LEVEL":                 "logging.level",
	"LOG_FORMAT":                "logging.format",
	"LOG_CALLER":                "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unrecognized variables are dropped by returning an empty string.
func envTransformFunc(key string) string {
	return envMappings[strings.ToUpper(key)]
}

// durationConfigPaths lists duration settings that accept bare second counts
// (e.g. STREAM_LINK_TTL_SECONDS=600, CACHE_TTL=300) alongside Go duration
// strings ("10m", "1h30m").
var durationConfigPaths = []string{
	"server.timeout",
	"auth.token_ttl",
	"signing.link_ttl",
	"ratelimit.window",
	"ratelimit.sweep_interval",
	"cache.ttl",
	"cache.timeout",
}

// processDurationFields rewrites bare-number duration values as second
// counts so they unmarshal into time.Duration fields.
func processDurationFields(k *koanf.Koanf) error {
	for _, path := range durationConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok {
			continue
		}
		if _, err := strconv.Atoi(strVal); err != nil {
			continue
		}
		if err := k.Set(path, strVal+"s"); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
