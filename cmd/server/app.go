package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/api"
	"github.com/yourname/aidiary/internal/auth"
	"github.com/yourname/aidiary/internal/config"
	"github.com/yourname/aidiary/internal/generation"
	"github.com/yourname/aidiary/internal/prompt"
	"github.com/yourname/aidiary/internal/storage"
)

// app wires the concrete collaborators behind api.App.
type app struct {
	cfg       *config.Config
	logger    internal.Logger
	repo      storage.DiaryRepository
	generator *generation.Generator
	accounts  *auth.Client
	provider  auth.Provider
	redis     *redis.Client
}

func (a *app) Logger() internal.Logger            { return a.logger }
func (a *app) DiaryRepo() storage.DiaryRepository { return a.repo }
func (a *app) Generator() api.DiaryGenerator      { return a.generator }
func (a *app) Accounts() api.AccountClient        { return a.accounts }
func (a *app) AuthProvider() auth.Provider        { return a.provider }
func (a *app) AuthMode() string                   { return a.cfg.Auth.Mode }

func newApp(ctx context.Context, cfg *config.Config, logger internal.Logger) (*app, error) {
	repo, err := storage.NewRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, repo: repo}

	var revocations auth.Revocations = auth.NewMemoryRevocations()
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		revocations = auth.NewRedisRevocations(a.redis)
	} else {
		logger.Warnf("REDIS_ADDR not set, sign-outs are remembered in memory only")
	}

	switch cfg.Auth.Mode {
	case auth.ModeRemote:
		a.provider = auth.NewRemoteAuthProvider(cfg.Auth.URL, cfg.Auth.AnonKey, revocations, logger)
	default:
		a.provider = auth.NewLocalAuthProvider(cfg.Auth.JWTSecret, revocations, logger)
	}
	a.accounts = auth.NewClient(cfg.Auth.URL, cfg.Auth.AnonKey, cfg.Auth.RedirectURL, revocations, logger)

	a.generator = generation.NewGenerator(
		generation.NewAnthropicCompleter(cfg.LLM.APIKey, cfg.LLM.Model),
		logger,
		generation.WithTimeout(cfg.LLM.Timeout),
		generation.WithDefaults(cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		generation.WithPromptBuilder(prompt.NewBuilder(cfg.Prompt.Locale)),
	)
	return a, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Errorf("failed to close storage: %v", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Errorf("failed to close redis: %v", err)
		}
	}
}

var _ api.App = (*app)(nil)
