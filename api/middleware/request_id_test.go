package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

func TestRequestIDPropagatesCallerValue(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "edge-42", seen)
	assert.Equal(t, "edge-42", rec.Header().Get(requestIDHeader))
}

func TestRequestIDReplacesUnusableValues(t *testing.T) {
	for _, raw := range []string{"", "has space", strings.Repeat("a", maxRequestIDLen+1)} {
		handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
		assert.NoError(t, err, "value %q should be replaced", raw)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: logs})
	handler := Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("catalog exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), "catalog exploded")
	assert.Contains(t, logs.String(), "catalog exploded")
}

func TestRecovererRepanicsOnAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
