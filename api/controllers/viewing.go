package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/api/validators"
	"github.com/angelmondragon/streamflix-backend/internal/viewing"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

func ViewingRoutes(svc viewing.Service, logg *logger.Logger) func(chi.Router) {
	h := &viewingHandlers{svc: svc, logg: logg}
	return func(r chi.Router) {
		r.Post("/progress", h.recordProgress)
		r.Get("/progress/titles/{titleId}", h.titleProgress)
		r.Delete("/progress/titles/{titleId}", h.clearProgress)
		r.Get("/history", h.history)

		r.Post("/watchlist", h.addToWatchlist)
		r.Get("/watchlist", h.watchlist)
		r.Delete("/watchlist/{titleId}", h.removeFromWatchlist)

		r.Get("/continue-watching", h.continueWatching)
		r.Get("/recently-completed", h.recentlyCompleted)
	}
}

type viewingHandlers struct {
	svc  viewing.Service
	logg *logger.Logger
}

func (h *viewingHandlers) user(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, err := currentUserID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return 0, false
	}
	return userID, true
}

// userAndTitle resolves the caller plus the {titleId} path param.
func (h *viewingHandlers) userAndTitle(w http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	userID, ok := h.user(w, r)
	if !ok {
		return 0, 0, false
	}
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return 0, 0, false
	}
	return userID, titleID, true
}

func (h *viewingHandlers) recordProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var body viewing.RecordViewingInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	progress, err := h.svc.RecordViewing(r.Context(), userID, body)
	respond(w, r, h.logg, progress, err)
}

func (h *viewingHandlers) titleProgress(w http.ResponseWriter, r *http.Request) {
	userID, titleID, ok := h.userAndTitle(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.GetViewingProgress(r.Context(), userID, titleID)
	respond(w, r, h.logg, rows, err)
}

func (h *viewingHandlers) clearProgress(w http.ResponseWriter, r *http.Request) {
	userID, titleID, ok := h.userAndTitle(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ClearViewingProgress(r.Context(), userID, titleID)
	respond(w, r, h.logg, result, err)
}

func (h *viewingHandlers) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.History(r.Context(), userID)
	respond(w, r, h.logg, rows, err)
}

func (h *viewingHandlers) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var body viewing.WatchlistInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	entry, err := h.svc.AddToWatchlist(r.Context(), userID, body)
	respondCreated(w, r, h.logg, entry, err)
}

func (h *viewingHandlers) watchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.GetWatchlist(r.Context(), userID)
	respond(w, r, h.logg, rows, err)
}

func (h *viewingHandlers) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, titleID, ok := h.userAndTitle(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.RemoveFromWatchlist(r.Context(), userID, titleID)
	respond(w, r, h.logg, entry, err)
}

func (h *viewingHandlers) continueWatching(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, h.svc.ContinueWatching)
}

func (h *viewingHandlers) recentlyCompleted(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, h.svc.RecentlyCompleted)
}

type feedFunc = func(ctx context.Context, userID uint, limit int) ([]viewing.ProgressDTO, error)

func (h *viewingHandlers) feed(w http.ResponseWriter, r *http.Request, load feedFunc) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	limit, err := validators.ParseQueryInt(r, "limit", viewing.DefaultFeedLimit, 1, viewing.MaxFeedLimit)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	rows, err := load(r.Context(), userID, limit)
	respond(w, r, h.logg, rows, err)
}
