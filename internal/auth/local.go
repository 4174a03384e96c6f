package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourname/aidiary/internal"
)

// accessClaims is the subset of a GoTrue access token we rely on.
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LocalAuthProvider verifies GoTrue access tokens with the project's JWT secret,
// without a network round trip.
type LocalAuthProvider struct {
	secret      []byte
	revocations Revocations
	logger      internal.Logger
}

func (a *LocalAuthProvider) ValidateTokenLocal(ctx context.Context, token string) (*internal.User, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		a.logger.Warnf("invalid token: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		a.logger.Warnf("invalid token: missing subject")
		return nil, ErrInvalidToken
	}

	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(ctx, token)
		if err != nil {
			a.logger.Errorf("revocation lookup failed: %v", err)
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: signed out", ErrInvalidToken)
		}
	}

	user := &internal.User{ID: claims.Subject, Email: claims.Email, Token: token}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
	}
	return user, nil
}

func (a *LocalAuthProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
	a.logger.Warnf("ValidateTokenRemote not implemented in LocalAuthProvider")
	return nil, errors.New("not implemented in LocalAuthProvider")
}

func NewLocalAuthProvider(secret string, revocations Revocations, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{secret: []byte(secret), revocations: revocations, logger: logger}
}
