package storage

import (
	"context"

	"github.com/yourname/aidiary/internal"
)

// DiaryRepository is owner-scoped: every read and write is filtered by userID,
// and a diary owned by someone else is reported as internal.ErrNotFound.
type DiaryRepository interface {
	CreateDiary(ctx context.Context, diary *internal.Diary) error
	GetDiary(ctx context.Context, userID, id string) (*internal.Diary, error)
	// ListDiaries returns the user's diaries, newest date first.
	ListDiaries(ctx context.Context, userID string) ([]internal.Diary, error)
	// UpdateDiary replaces content and, when userInput is non-nil, the note too.
	UpdateDiary(ctx context.Context, userID, id, content string, userInput *string) (*internal.Diary, error)
	DeleteDiary(ctx context.Context, userID, id string) error
	Close() error
}
