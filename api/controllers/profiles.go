package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/api/validators"
	"github.com/angelmondragon/streamflix-backend/internal/profiles"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

// ProfileRoutes scopes every profile operation to the authenticated user.
func ProfileRoutes(svc profiles.Service, logg *logger.Logger) func(chi.Router) {
	owned := func(w http.ResponseWriter, r *http.Request) (userID, id uint, ok bool) {
		userID, err := currentUserID(r)
		if err == nil {
			id, err = validators.URLParamID(r, "id")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return 0, 0, false
		}
		return userID, id, true
	}

	return func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			userID, err := currentUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			var body profiles.ProfileInput
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			profile, err := svc.Create(r.Context(), userID, body)
			respondCreated(w, r, logg, profile, err)
		})
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			userID, err := currentUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			list, err := svc.List(r.Context(), userID)
			respond(w, r, logg, list, err)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			userID, id, ok := owned(w, r)
			if !ok {
				return
			}
			profile, err := svc.Get(r.Context(), userID, id)
			respond(w, r, logg, profile, err)
		})
		r.Patch("/{id}", func(w http.ResponseWriter, r *http.Request) {
			userID, id, ok := owned(w, r)
			if !ok {
				return
			}
			var body profiles.ProfileInput
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			profile, err := svc.Update(r.Context(), userID, id, body)
			respond(w, r, logg, profile, err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			userID, id, ok := owned(w, r)
			if !ok {
				return
			}
			respondDeleted(w, r, logg, svc.Delete(r.Context(), userID, id))
		})
	}
}
