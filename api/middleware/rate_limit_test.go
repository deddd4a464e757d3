package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
)

func TestRateLimitRejectsOverBurst(t *testing.T) {
	handler := RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.5, Burst: 2}, nil)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil))
		codes = append(codes, rec.Code)
		if i == 2 && rec.Header().Get("Retry-After") != "2" {
			t.Fatalf("expected Retry-After 2 got %q", rec.Header().Get("Retry-After"))
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(config.RateLimitConfig{}, nil)(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	}
}
