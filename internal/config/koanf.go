package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/agora/config.yaml",
}

// ConfigPathEnvVar names the variable pointing at an explicit config file
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths are given as comma-separated strings in the environment
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"port":                 "server.port",
	"request_timeout":      "server.request_timeout",
	"cors_origins":         "server.cors_origins",
	"database_backend":     "database.backend",
	"database_url":         "database.url",
	"mongo_uri":            "database.mongo_uri",
	"mongo_db":             "database.mongo_db",
	"jwt_secret":           "auth.jwt_secret",
	"cursor_secret":        "feed.cursor_secret",
	"feed_default_limit":   "feed.default_limit",
	"feed_max_limit":       "feed.max_limit",
	"rate_limit_requests":  "ratelimit.requests",
	"rate_limit_window":    "ratelimit.window",
	"explicit_owner_check": "posts.explicit_owner_check",
	"log_level":            "log.level",
	"log_format":           "log.format",
}

// Load builds the configuration from defaults, config file and environment,
// then validates it
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	// DATABASE_URL -> database.url, AGORA_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

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

// envTransformFunc maps an environment variable to its config path, or ""
// to skip it. An AGORA_ prefix is accepted and stripped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, "agora_")
	return envMappings[key]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
