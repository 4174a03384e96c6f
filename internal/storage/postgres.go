package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/storage/migrations"
)

const dateLayout = "2006-01-02"

type PostgresStorage struct {
	db     *sql.DB
	logger internal.Logger
}

func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStorage(db *sql.DB, logger internal.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiary(row rowScanner) (*internal.Diary, error) {
	var d internal.Diary
	var date time.Time
	if err := row.Scan(&d.ID, &d.UserID, &date, &d.UserInput, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	// DATE columns come back as UTC midnight; formatting them directly avoids
	// any shift from the server's local zone.
	d.Date = date.Format(dateLayout)
	return &d, nil
}

// --- DiaryRepository ---
func (p *PostgresStorage) CreateDiary(ctx context.Context, diary *internal.Diary) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO diaries (id, user_id, date, user_input, content, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		diary.ID, diary.UserID, diary.Date, diary.UserInput, diary.Content, diary.CreatedAt, diary.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert diary: %v", err)
		return fmt.Errorf("insert diary: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetDiary(ctx context.Context, userID, id string) (*internal.Diary, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, user_input, content, created_at, updated_at FROM diaries WHERE id = $1 AND user_id = $2`,
		id, userID)
	d, err := scanDiary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to fetch diary: %v", err)
		return nil, fmt.Errorf("select diary: %w", err)
	}
	return d, nil
}

func (p *PostgresStorage) ListDiaries(ctx context.Context, userID string) ([]internal.Diary, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, date, user_input, content, created_at, updated_at FROM diaries WHERE user_id = $1 ORDER BY date DESC, created_at DESC`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query diaries: %v", err)
		return nil, fmt.Errorf("select diaries: %w", err)
	}
	defer rows.Close()

	diaries := []internal.Diary{}
	for rows.Next() {
		d, err := scanDiary(rows)
		if err != nil {
			p.logger.Errorf("failed to scan diary: %v", err)
			return nil, fmt.Errorf("scan diary: %w", err)
		}
		diaries = append(diaries, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diaries: %w", err)
	}
	return diaries, nil
}

func (p *PostgresStorage) UpdateDiary(ctx context.Context, userID, id, content string, userInput *string) (*internal.Diary, error) {
	row := p.db.QueryRowContext(ctx,
		`UPDATE diaries SET content = $1, user_input = COALESCE($2, user_input), updated_at = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING id, user_id, date, user_input, content, created_at, updated_at`,
		content, userInput, id, userID)
	d, err := scanDiary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to update diary: %v", err)
		return nil, fmt.Errorf("update diary: %w", err)
	}
	return d, nil
}

func (p *PostgresStorage) DeleteDiary(ctx context.Context, userID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM diaries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		p.logger.Errorf("failed to delete diary: %v", err)
		return fmt.Errorf("delete diary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	return p.db.Close()
}

// --- Compile-time assertions ---
var _ DiaryRepository = (*PostgresStorage)(nil)
