package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/streamflix-backend/api/middleware"
	"github.com/angelmondragon/streamflix-backend/internal/viewing"
)

type viewingSpy struct {
	viewing.Service
	userID uint
	limit  int
	input  viewing.RecordViewingInput
}

func (s *viewingSpy) ContinueWatching(ctx context.Context, userID uint, limit int) ([]viewing.ProgressDTO, error) {
	s.userID, s.limit = userID, limit
	return []viewing.ProgressDTO{}, nil
}

func (s *viewingSpy) RecentlyCompleted(ctx context.Context, userID uint, limit int) ([]viewing.ProgressDTO, error) {
	s.userID, s.limit = userID, limit
	return []viewing.ProgressDTO{}, nil
}

func (s *viewingSpy) RecordViewing(ctx context.Context, userID uint, input viewing.RecordViewingInput) (*viewing.ProgressDTO, error) {
	s.userID, s.input = userID, input
	return &viewing.ProgressDTO{UserID: userID, TitleID: input.TitleID}, nil
}

func viewingRequest(method, path, body string, userID uint) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func viewingRouter(svc viewing.Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/viewing", ViewingRoutes(svc, testLogger()))
	return r
}

func TestViewingFeedsDefaultLimit(t *testing.T) {
	spy := &viewingSpy{}
	router := viewingRouter(spy)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, viewingRequest(http.MethodGet, "/viewing/continue-watching", "", 5))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, uint(5), spy.userID)
	assert.Equal(t, viewing.DefaultFeedLimit, spy.limit)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, viewingRequest(http.MethodGet, "/viewing/recently-completed?limit=25", "", 5))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 25, spy.limit)
}

func TestViewingFeedRejectsOutOfRangeLimit(t *testing.T) {
	resp := httptest.NewRecorder()
	viewingRouter(&viewingSpy{}).ServeHTTP(resp, viewingRequest(http.MethodGet, "/viewing/continue-watching?limit=0", "", 5))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestViewingRequiresUserContext(t *testing.T) {
	resp := httptest.NewRecorder()
	viewingRouter(&viewingSpy{}).ServeHTTP(resp, viewingRequest(http.MethodGet, "/viewing/continue-watching", "", 0))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestViewingRecordProgressDecodesBody(t *testing.T) {
	spy := &viewingSpy{}
	body := `{"titleId":3,"positionSeconds":90,"totalDurationSeconds":600,"autoPlayNextEpisode":false}`

	resp := httptest.NewRecorder()
	viewingRouter(spy).ServeHTTP(resp, viewingRequest(http.MethodPost, "/viewing/progress", body, 8))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, uint(3), spy.input.TitleID)
	assert.Equal(t, 90, spy.input.PositionSeconds)
	require.NotNil(t, spy.input.AutoPlayNextEpisode)
	assert.False(t, *spy.input.AutoPlayNextEpisode)
}

func TestViewingRecordProgressRejectsMissingDuration(t *testing.T) {
	resp := httptest.NewRecorder()
	viewingRouter(&viewingSpy{}).ServeHTTP(resp, viewingRequest(http.MethodPost, "/viewing/progress", `{"titleId":3}`, 8))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
