package auth

import (
	"context"
	"errors"

	"github.com/yourname/aidiary/internal"
)

var ErrInvalidToken = errors.New("invalid token")

type Provider interface {
	ValidateTokenLocal(ctx context.Context, token string) (*internal.User, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error)
}
