package storage

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/config"
)

func NewFileRepository(fs afero.Fs, diaryFile string, logger internal.Logger) (DiaryRepository, error) {
	return NewFileStorage(fs, diaryFile, logger)
}

func NewPostgresRepository(ctx context.Context, dsn string, logger internal.Logger) (DiaryRepository, error) {
	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return NewPostgresStorage(db, logger), nil
}

// NewRepository picks the backend named by cfg.Backend.
func NewRepository(ctx context.Context, cfg config.StorageConfig, logger internal.Logger) (DiaryRepository, error) {
	switch cfg.Backend {
	case "postgres":
		return NewPostgresRepository(ctx, cfg.PostgresDSN, logger)
	case "file":
		return NewFileRepository(afero.NewOsFs(), cfg.DiaryFile, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
