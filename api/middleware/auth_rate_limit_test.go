package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

type loginAttempt struct {
	email      string
	remoteAddr string
	headers    map[string]string
}

func (a loginAttempt) request() *http.Request {
	body := `{"email":"` + a.email + `","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = a.remoteAddr
	if req.RemoteAddr == "" {
		req.RemoteAddr = "192.0.2.10:5000"
	}
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestAuthRateLimitWindows(t *testing.T) {
	tests := []struct {
		name      string
		policy    AuthRateLimitPolicy
		attempts  []loginAttempt
		wantCodes []int
		wantScope string
	}{
		{
			name:   "email limit folds case and whitespace",
			policy: NewAuthRateLimitPolicy("login", time.Minute, 0, 2),
			attempts: []loginAttempt{
				{email: "Viewer@Example.com"},
				{email: "viewer@example.com"},
				{email: " VIEWER@example.com "},
			},
			wantCodes: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:   "ip limit keys on the first forwarded address",
			policy: NewAuthRateLimitPolicy("register", time.Minute, 1, 0),
			attempts: []loginAttempt{
				{email: "a@example.com", remoteAddr: "10.0.0.1:1234", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}},
				{email: "b@example.com", remoteAddr: "10.0.0.2:1234", headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}},
			},
			wantCodes: []int{http.StatusOK, http.StatusTooManyRequests},
			wantScope: "auth:register:ip:203.0.113.9",
		},
		{
			name:   "ip limit falls back to X-Real-IP",
			policy: NewAuthRateLimitPolicy("login", time.Minute, 1, 0),
			attempts: []loginAttempt{
				{email: "a@example.com", headers: map[string]string{"X-Real-IP": "198.51.100.7"}},
				{email: "a@example.com", headers: map[string]string{"X-Real-IP": "198.51.100.8"}},
			},
			wantCodes: []int{http.StatusOK, http.StatusOK},
			wantScope: "auth:login:ip:198.51.100.7",
		},
		{
			name:      "disabled policy passes through",
			policy:    NewAuthRateLimitPolicy("", 0, 1, 1),
			attempts:  []loginAttempt{{email: "x@example.com"}, {email: "x@example.com"}},
			wantCodes: []int{http.StatusOK, http.StatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeRateStore()
			handler := AuthRateLimit(tt.policy, store, nil)(okHandler())
			for i, attempt := range tt.attempts {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, attempt.request())
				require.Equal(t, tt.wantCodes[i], rec.Code, "attempt %d", i)
			}
			if tt.wantScope != "" {
				assert.Contains(t, store.counts, tt.wantScope)
			}
		})
	}
}

func TestAuthRateLimitBlockedResponse(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 1), newFakeRateStore(), nil)(okHandler())
	attempt := loginAttempt{email: "viewer@example.com"}
	handler.ServeHTTP(httptest.NewRecorder(), attempt.request())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, attempt.request())

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
}

func TestAuthRateLimitRestoresBodyForHandler(t *testing.T) {
	var seen string
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 5, 5), newFakeRateStore(), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			seen = string(body)
		}),
	)
	handler.ServeHTTP(httptest.NewRecorder(), loginAttempt{email: "viewer@example.com"}.request())
	assert.Contains(t, seen, `"email":"viewer@example.com"`)
}

func TestAuthRateLimitStoreFailureIsDependencyError(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	rec := httptest.NewRecorder()
	AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 5, 5), store, nil)(okHandler()).
		ServeHTTP(rec, loginAttempt{email: "viewer@example.com"}.request())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
