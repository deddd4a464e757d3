package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/auth"
	"github.com/angelmondragon/streamflix-backend/pkg/auth/session"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, 42, "viewer@example.com")

	var gotUser uint
	var gotEmail string
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUser != 42 {
		t.Fatalf("expected user 42 in context got %d", gotUser)
	}
	if gotEmail != "viewer@example.com" {
		t.Fatalf("unexpected email %q", gotEmail)
	}
}

func TestAuthAcceptsTokenWithoutScheme(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, 7, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", token)
	resp := httptest.NewRecorder()
	Auth(cfg, nil, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, 42, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	Auth(cfg, stubSessionVerifier{ok: false}, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSurfacesSessionStoreFailure(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, 42, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	Auth(cfg, stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uint, email string) string {
	t.Helper()
	payload := auth.AccessTokenPayload{
		UserID: userID,
		Email:  email,
		JTI:    session.NewAccessID(),
	}
	token, err := auth.MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}

func TestAuthChallengesUnauthenticatedRequests(t *testing.T) {
	resp := httptest.NewRecorder()
	Auth(testJWTConfig(), nil, nil)(okHandler()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := resp.Header().Get("WWW-Authenticate"); got != `Bearer realm="streamflix"` {
		t.Fatalf("unexpected challenge %q", got)
	}

	resp = httptest.NewRecorder()
	token := mintTestToken(t, testJWTConfig(), 42, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(testJWTConfig(), stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Header().Get("WWW-Authenticate") != "" {
		t.Fatal("dependency failures must not challenge the client")
	}
}

func TestBearerTokenSchemeIsCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "BEARER abc.def")
	token, err := BearerToken(req)
	if err != nil || token != "abc.def" {
		t.Fatalf("unexpected token %q err=%v", token, err)
	}
}
