package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Database.URL = "postgres://localhost/agora"
	cfg.Auth.JWTSecret = testSecret
	cfg.Feed.CursorSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*Config)
		name    string
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory needs no url", mutate: func(c *Config) { c.Database.Backend = BackendMemory; c.Database.URL = "" }},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "postgres without url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "database.url"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Database.Backend = BackendMongo }, wantErr: "database.mongo_uri"},
		{name: "unknown backend", mutate: func(c *Config) { c.Database.Backend = "sqlite" }, wantErr: "database.backend"},
		{name: "short jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "auth.jwt_secret"},
		{name: "short cursor secret", mutate: func(c *Config) { c.Feed.CursorSecret = "" }, wantErr: "feed.cursor_secret"},
		{name: "default above max", mutate: func(c *Config) { c.Feed.DefaultLimit = 60 }, wantErr: "feed limits"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  port: 9000
  request_timeout: 10s
database:
  backend: memory
feed:
  default_limit: 10
log:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("AGORA_CURSOR_SECRET", testSecret)
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("EXPLICIT_OWNER_CHECK", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, BackendMemory, cfg.Database.Backend)
	assert.Equal(t, 10, cfg.Feed.DefaultLimit)
	assert.Equal(t, 50, cfg.Feed.MaxLimit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.True(t, cfg.Posts.ExplicitOwnerCheck)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CURSOR_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "database.url", envTransformFunc("DATABASE_URL"))
	assert.Equal(t, "log.level", envTransformFunc("AGORA_LOG_LEVEL"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}
