package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8088", cfg.App.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data/diaries.json", cfg.Storage.DiaryFile)
	assert.Equal(t, "local", cfg.Auth.Mode)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.LLM.Model)
	assert.Equal(t, "ja", cfg.Prompt.Locale)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost:5432/diary?sslmode=disable")
	t.Setenv("AUTH_MODE", "remote")
	t.Setenv("AUTH_URL", "https://auth.example.com")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Equal(t, "remote", cfg.Auth.Mode)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadFile_FileLayer(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt:\n  locale: en\nllm:\n  max_tokens: 800\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Prompt.Locale)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			App:     AppConfig{Env: "development"},
			Storage: StorageConfig{Backend: "file", DiaryFile: "d.json"},
			Auth:    AuthConfig{Mode: "local", JWTSecret: "s"},
			LLM:     LLMConfig{Timeout: time.Second, MaxTokens: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad env", func(c *Config) { c.App.Env = "qa" }, "APP_ENV"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }, "POSTGRES_DSN"},
		{"file without path", func(c *Config) { c.Storage.DiaryFile = "" }, "DIARY_FILE"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, "STORAGE_BACKEND"},
		{"local without secret", func(c *Config) { c.Auth.JWTSecret = "" }, "AUTH_JWT_SECRET"},
		{"remote without url", func(c *Config) { c.Auth.Mode = "remote" }, "AUTH_URL"},
		{"production without api key", func(c *Config) { c.App.Env = "production" }, "ANTHROPIC_API_KEY"},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }, "LLM_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
