package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourname/aidiary/internal"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func nopLogger() internal.Logger {
	return internal.NewZapLogger(zap.NewNop().Sugar())
}

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func userToken(t *testing.T, sub string, exp time.Time) string {
	return signToken(t, testSecret, &accessClaims{
		Email: sub + "@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
}

func TestLocalAuthProvider(t *testing.T) {
	p := NewLocalAuthProvider(testSecret, NewMemoryRevocations(), nopLogger())
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	user, err := p.ValidateTokenLocal(ctx, userToken(t, "user-1", exp))
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user-1@example.com", user.Email)
	assert.True(t, exp.Equal(user.ExpiresAt))

	tests := []struct {
		name  string
		token string
	}{
		{"expired", userToken(t, "user-1", time.Now().Add(-time.Minute))},
		{"wrong secret", signToken(t, "another-secret", &accessClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1", ExpiresAt: jwt.NewNumericDate(exp)}})},
		{"no subject", signToken(t, testSecret, &accessClaims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp)}})},
		{"no expiry", signToken(t, testSecret, &accessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ValidateTokenLocal(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestLocalAuthProvider_RejectsRevoked(t *testing.T) {
	revocations := NewMemoryRevocations()
	p := NewLocalAuthProvider(testSecret, revocations, nopLogger())
	exp := time.Now().Add(time.Hour)
	token := userToken(t, "user-1", exp)

	require.NoError(t, revocations.Revoke(context.Background(), token, exp))
	_, err := p.ValidateTokenLocal(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevocations_Expire(t *testing.T) {
	m := NewMemoryRevocations()
	now := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Revoke(ctx, "tok", now.Add(time.Minute)))
	revoked, err := m.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = m.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, m.Revoke(ctx, "old", now.Add(-time.Second)))
	revoked, _ = m.IsRevoked(ctx, "old")
	assert.False(t, revoked)
}

func TestRedisRevocations_KeyIsHashed(t *testing.T) {
	r := NewRedisRevocations(nil)
	key := r.key("secret-token")
	assert.Equal(t, "revoked:"+HashToken("secret-token"), key)
	assert.NotContains(t, key, "secret-token")
	assert.Len(t, HashToken("x"), 64)
}

func TestRemoteAuthProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-9", "email": "u9@example.com"})
	}))
	defer srv.Close()

	p := NewRemoteAuthProvider(srv.URL+"/", "anon", NewMemoryRevocations(), nopLogger())
	user, err := p.ValidateTokenRemote(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user-9", user.ID)
	assert.Equal(t, "good", user.Token)

	_, err = p.ValidateTokenRemote(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClient(t *testing.T) {
	var logoutCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		switch r.URL.Path {
		case "/auth/v1/signup":
			var body credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Email == "taken@example.com" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"code":422,"msg":"User already registered"}`))
				return
			}
			// Pending email confirmation: GoTrue answers with the bare user.
			_, _ = w.Write([]byte(`{"id":"new-user","email":"` + body.Email + `"}`))
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			var body credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Password != "correct" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"user-1","email":"a@example.com"}}`))
		case "/auth/v1/logout":
			logoutCalls++
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		case "/auth/v1/recover":
			assert.Equal(t, "https://app.example.com/auth/reset-password", r.URL.Query().Get("redirect_to"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	revocations := NewMemoryRevocations()
	c := NewClient(srv.URL, "anon", "https://app.example.com/auth/reset-password", revocations, nopLogger())
	ctx := context.Background()

	s, err := c.SignUp(ctx, "new@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "new-user", s.User.ID)
	assert.Empty(t, s.AccessToken)

	_, err = c.SignUp(ctx, "taken@example.com", "pw")
	var gte *GoTrueError
	require.True(t, errors.As(err, &gte))
	assert.Equal(t, http.StatusUnprocessableEntity, gte.StatusCode)
	assert.Equal(t, "User already registered", gte.Message)

	s, err = c.SignIn(ctx, "a@example.com", "correct")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "user-1", s.User.ID)

	_, err = c.SignIn(ctx, "a@example.com", "wrong")
	require.True(t, errors.As(err, &gte))
	assert.Equal(t, "Invalid login credentials", gte.Message)

	user := &internal.User{ID: "user-1", Token: "at", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, c.SignOut(ctx, user))
	assert.Equal(t, 1, logoutCalls)
	revoked, err := revocations.IsRevoked(ctx, "at")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, c.ResetPassword(ctx, "a@example.com"))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewLocalAuthProvider(testSecret, NewMemoryRevocations(), nopLogger())

	r := gin.New()
	r.Use(AuthMiddleware(p, ModeLocal, nopLogger()))
	r.GET("/me", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.ID)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + userToken(t, "user-1", time.Now().Add(time.Hour)), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"success":false,"error":"ログインが必要です","code":"UNAUTHORIZED"}`, w.Body.String())
			} else {
				assert.Equal(t, "user-1", w.Body.String())
			}
		})
	}
}

type downRevocations struct{}

func (downRevocations) Revoke(context.Context, string, time.Time) error {
	return errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func (downRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func TestAuthMiddleware_StoreFailureIsNotUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewLocalAuthProvider(testSecret, downRevocations{}, nopLogger())

	r := gin.New()
	r.Use(AuthMiddleware(p, ModeLocal, nopLogger()))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, "user-1", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"予期しないエラーが発生しました","code":"UPSTREAM_ERROR"}`, w.Body.String())

	// A bad token is still the caller's problem even when the store is down.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRemoteAuthProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewRemoteAuthProvider(srv.URL, "anon", nil, nopLogger())
	_, err := p.ValidateTokenRemote(context.Background(), "good")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestClient_SignOutSurvivesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	revocations := NewMemoryRevocations()
	c := NewClient(srv.URL, "anon", "", revocations, nopLogger())
	ctx := context.Background()
	user := &internal.User{ID: "user-1", Token: "at", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, c.SignOut(ctx, user))
	revoked, err := revocations.IsRevoked(ctx, "at")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Error(t, NewClient(srv.URL, "anon", "", nil, nopLogger()).SignOut(ctx, user))
	assert.Error(t, NewClient(srv.URL, "anon", "", downRevocations{}, nopLogger()).SignOut(ctx, user))
}
