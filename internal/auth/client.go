package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourname/aidiary/internal"
)

// GoTrueError is a non-2xx answer from the auth API. Message is the API's own
// explanation and is safe to show to the user.
type GoTrueError struct {
	StatusCode int
	Message    string
}

func (e *GoTrueError) Error() string {
	return fmt.Sprintf("auth api returned %d: %s", e.StatusCode, e.Message)
}

type Session struct {
	AccessToken  string        `json:"accessToken,omitempty"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	ExpiresIn    int           `json:"expiresIn,omitempty"`
	User         internal.User `json:"user"`
}

// Client proxies account operations to a GoTrue-compatible auth API.
type Client struct {
	baseURL     string
	anonKey     string
	redirectURL string
	httpClient  *http.Client
	revocations Revocations
	logger      internal.Logger
}

func NewClient(baseURL, anonKey, redirectURL string, revocations Revocations, logger internal.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		redirectURL: redirectURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		revocations: revocations,
		logger:      logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// goTrueSession covers both shapes signup can answer with: a session, or the
// bare user when email confirmation is pending.
type goTrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *goTrueUser `json:"user"`
	ID           string      `json:"id"`
	Email        string      `json:"email"`
}

func (s *goTrueSession) session() *Session {
	out := &Session{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresIn: s.ExpiresIn}
	if s.User != nil {
		out.User = internal.User{ID: s.User.ID, Email: s.User.Email}
	} else {
		out.User = internal.User{ID: s.ID, Email: s.Email}
	}
	return out
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var out goTrueSession
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	s := out.session()
	if s.User.ID == "" {
		return nil, &GoTrueError{StatusCode: http.StatusBadGateway, Message: "ユーザーの作成に失敗しました"}
	}
	if s.User.Email == "" {
		s.User.Email = email
	}
	return s, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out goTrueSession
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	return out.session(), nil
}

// SignOut revokes the access token locally, so a locally verified token stops
// working before it expires, then ends the session upstream. Once the local
// revocation holds, an upstream failure is only logged.
func (c *Client) SignOut(ctx context.Context, user *internal.User) error {
	if c.revocations == nil {
		return c.do(ctx, http.MethodPost, "/auth/v1/logout", user.Token, nil, nil)
	}
	if err := c.revocations.Revoke(ctx, user.Token, user.ExpiresAt); err != nil {
		c.logger.Errorf("failed to revoke token: %v", err)
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", user.Token, nil, nil); err != nil {
		c.logger.Warnf("upstream logout failed for user %s, token already revoked: %v", user.ID, err)
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	path := "/auth/v1/recover"
	if c.redirectURL != "" {
		path += "?redirect_to=" + url.QueryEscape(c.redirectURL)
	}
	return c.do(ctx, http.MethodPost, path, "", map[string]string{"email": email}, nil)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		c.logger.Errorf("failed to create request: %v", err)
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("failed to call auth service: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeGoTrueError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Errorf("failed to decode auth response: %v", err)
		return err
	}
	return nil
}

func decodeGoTrueError(resp *http.Response) error {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.ErrorDescription
	for _, m := range []string{body.Msg, body.Message, body.Error} {
		if msg == "" {
			msg = m
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &GoTrueError{StatusCode: resp.StatusCode, Message: msg}
}
