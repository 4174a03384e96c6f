package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/config"
)

// defaultYAML is always loaded first; CONFIG_PATH may layer a file on top.
// ${VAR:default} is expanded from the environment before parsing.
const defaultYAML = `
app:
  env: "${APP_ENV:development}"
  log_level: "${LOG_LEVEL:info}"
  addr: "${HTTP_ADDR::8088}"
  shutdown_timeout: "${SHUTDOWN_TIMEOUT:10s}"
storage:
  backend: "${STORAGE_BACKEND:file}"
  postgres_dsn: "${POSTGRES_DSN:}"
  diary_file: "${DIARY_FILE:data/diaries.json}"
auth:
  mode: "${AUTH_MODE:local}"
  url: "${AUTH_URL:}"
  anon_key: "${AUTH_ANON_KEY:}"
  jwt_secret: "${AUTH_JWT_SECRET:}"
  redirect_url: "${AUTH_REDIRECT_URL:}"
redis:
  addr: "${REDIS_ADDR:}"
  password: "${REDIS_PASSWORD:}"
  db: ${REDIS_DB:0}
llm:
  api_key: "${ANTHROPIC_API_KEY:}"
  model: "${LLM_MODEL:claude-sonnet-4-20250514}"
  timeout: "${LLM_TIMEOUT:30s}"
  max_tokens: ${LLM_MAX_TOKENS:1000}
  temperature: ${LLM_TEMPERATURE:0.7}
prompt:
  locale: "${PROMPT_LOCALE:ja}"
`

type Config struct {
	App     AppConfig     `yaml:"app"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
	LLM     LLMConfig     `yaml:"llm"`
	Prompt  PromptConfig  `yaml:"prompt"`
}

type AppConfig struct {
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"`
	PostgresDSN string `yaml:"postgres_dsn"`
	DiaryFile   string `yaml:"diary_file"`
}

// AuthConfig points at the GoTrue-compatible auth API. Mode "local" verifies
// access tokens with JWTSecret; "remote" asks the auth API for every request.
type AuthConfig struct {
	Mode      string `yaml:"mode"`
	URL       string `yaml:"url"`
	AnonKey   string `yaml:"anon_key"`
	JWTSecret string `yaml:"jwt_secret"`

	// RedirectURL is where password-reset mails send the user back to.
	RedirectURL string `yaml:"redirect_url"`
}

// RedisConfig backs the sign-out revocation list. An empty Addr keeps it in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
}

type PromptConfig struct {
	Locale string `yaml:"locale"`
}

// Load reads the defaults, the optional CONFIG_PATH file and the environment.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_PATH"))
}

func LoadFile(path string) (*Config, error) {
	opts := []config.YAMLOption{
		config.Source(strings.NewReader(defaultYAML)),
		config.Expand(os.LookupEnv),
	}
	if path != "" {
		opts = append(opts, config.File(path))
	}

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create config provider: %w", err)
	}

	var cfg Config
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("failed to populate config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Env != "development" && c.App.Env != "staging" && c.App.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.Storage.Backend {
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "file":
		if c.Storage.DiaryFile == "" {
			return errors.New("file storage requires DIARY_FILE to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres")
	}
	switch c.Auth.Mode {
	case "local":
		if c.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is required when AUTH_MODE=local")
		}
	case "remote":
		if c.Auth.URL == "" {
			return errors.New("AUTH_URL is required when AUTH_MODE=remote")
		}
	default:
		return errors.New("AUTH_MODE must be one of: local, remote")
	}
	if c.App.Env != "development" && c.LLM.APIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is required outside development")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("LLM_TIMEOUT must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("LLM_MAX_TOKENS must be positive")
	}
	return nil
}
