package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/api"
	"github.com/yourname/aidiary/internal/config"
	"github.com/yourname/aidiary/internal/storage"
)

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:          "diaryd",
		Short:        "AI diary server",
		SilenceUsage: true,
		RunE:         func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file layered over the defaults (overrides CONFIG_PATH)")
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func setup(configPath string) (*config.Config, *internal.ZapLogger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := internal.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if migrate {
				if err := runMigrations(ctx, cfg, logger); err != nil {
					return err
				}
			}

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				logger.Errorf("failed to start: %v", err)
				return err
			}
			defer a.Close()

			if cfg.App.Env != "development" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{Addr: cfg.App.Addr, Handler: api.NewRouter(a)}

			errCh := make(chan error, 1)
			go func() {
				logger.Infow("server listening", "addr", cfg.App.Addr, "env", cfg.App.Env, "storage", cfg.Storage.Backend)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					logger.Errorf("server failed: %v", err)
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runMigrations(cmd.Context(), cfg, logger)
		},
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger internal.Logger) error {
	if cfg.Storage.Backend != "postgres" {
		logger.Infof("storage backend is %q, nothing to migrate", cfg.Storage.Backend)
		return nil
	}
	db, err := storage.OpenPostgres(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.RunMigrations(ctx, db); err != nil {
		logger.Errorf("migration failed: %v", err)
		return err
	}
	logger.Infof("migrations applied")
	return nil
}
