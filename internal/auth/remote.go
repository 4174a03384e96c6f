package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yourname/aidiary/internal"
)

// RemoteAuthProvider asks the GoTrue server who owns a token.
type RemoteAuthProvider struct {
	AuthServiceURL string
	AnonKey        string
	HTTPClient     *http.Client
	revocations    Revocations
	logger         internal.Logger
}

type goTrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (a *RemoteAuthProvider) ValidateTokenLocal(ctx context.Context, token string) (*internal.User, error) {
	return nil, errors.New("not implemented in RemoteAuthProvider")
}

func (a *RemoteAuthProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(a.AuthServiceURL, "/")+"/auth/v1/user", nil)
	if err != nil {
		a.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("apikey", a.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		a.logger.Errorf("auth service returned %d", resp.StatusCode)
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		a.logger.Warnf("auth service returned %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: auth service returned %d", ErrInvalidToken, resp.StatusCode)
	}
	var u goTrueUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		a.logger.Errorf("failed to decode auth response: %v", err)
		return nil, err
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	return &internal.User{ID: u.ID, Email: u.Email, Token: token}, nil
}

func NewRemoteAuthProvider(url, anonKey string, revocations Revocations, logger internal.Logger) *RemoteAuthProvider {
	return &RemoteAuthProvider{
		AuthServiceURL: url,
		AnonKey:        anonKey,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		revocations:    revocations,
		logger:         logger,
	}
}
