package api

import (
	"context"

	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/auth"
	"github.com/yourname/aidiary/internal/generation"
	"github.com/yourname/aidiary/internal/storage"
)

// DiaryGenerator is satisfied by *generation.Generator.
type DiaryGenerator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// AccountClient is satisfied by *auth.Client.
type AccountClient interface {
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, user *internal.User) error
	ResetPassword(ctx context.Context, email string) error
}

type App interface {
	Logger() internal.Logger
	DiaryRepo() storage.DiaryRepository
	Generator() DiaryGenerator
	Accounts() AccountClient
	AuthProvider() auth.Provider
	AuthMode() string
}
