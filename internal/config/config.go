// Package config loads server configuration from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Database backends
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Feed      FeedConfig      `koanf:"feed"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Posts     PostsConfig     `koanf:"posts"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	CORSOrigins    []string      `koanf:"cors_origins"`
	Port           int           `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// DatabaseConfig selects and addresses the storage backend
type DatabaseConfig struct {
	Backend  string `koanf:"backend"`
	URL      string `koanf:"url"`
	MongoURI string `koanf:"mongo_uri"`
	MongoDB  string `koanf:"mongo_db"`
}

// AuthConfig holds the HS256 secret used to verify bearer tokens
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// FeedConfig controls feed pagination
type FeedConfig struct {
	CursorSecret string `koanf:"cursor_secret"`
	DefaultLimit int    `koanf:"default_limit"`
	MaxLimit     int    `koanf:"max_limit"`
}

// RateLimitConfig allows Requests per Window for each client
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// PostsConfig toggles post mutation behavior
type PostsConfig struct {
	// ExplicitOwnerCheck answers 403 instead of 404 when a user mutates
	// somebody else's post
	ExplicitOwnerCheck bool `koanf:"explicit_owner_check"`
}

// LogConfig selects log level and output format ("json" or "text")
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 30 * time.Second,
			CORSOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			Backend: BackendPostgres,
			MongoDB: "agora",
		},
		Feed: FeedConfig{
			DefaultLimit: 15,
			MaxLimit:     50,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for missing or inconsistent values
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}

	switch c.Database.Backend {
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres backend"))
		}
	case BackendMongo:
		if c.Database.MongoURI == "" {
			errs = append(errs, errors.New("database.mongo_uri is required for the mongo backend"))
		}
		if c.Database.MongoDB == "" {
			errs = append(errs, errors.New("database.mongo_db is required for the mongo backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("database.backend must be one of postgres, mongo, memory; got %q", c.Database.Backend))
	}

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 bytes"))
	}
	if len(c.Feed.CursorSecret) < 32 {
		errs = append(errs, errors.New("feed.cursor_secret must be at least 32 bytes"))
	}
	if c.Feed.DefaultLimit <= 0 || c.Feed.MaxLimit <= 0 || c.Feed.DefaultLimit > c.Feed.MaxLimit {
		errs = append(errs, fmt.Errorf("feed limits must satisfy 0 < default_limit (%d) <= max_limit (%d)",
			c.Feed.DefaultLimit, c.Feed.MaxLimit))
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit.requests and ratelimit.window must be positive"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
