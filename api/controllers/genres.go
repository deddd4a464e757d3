package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/api/validators"
	"github.com/angelmondragon/streamflix-backend/internal/genres"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

func GenreRoutes(svc genres.Service, logg *logger.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var body genres.GenreInput
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			genre, err := svc.Create(r.Context(), body)
			respondCreated(w, r, logg, genre, err)
		})
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			list, err := svc.List(r.Context())
			respond(w, r, logg, list, err)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := validators.URLParamID(r, "id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			genre, err := svc.Get(r.Context(), id)
			respond(w, r, logg, genre, err)
		})
		r.Patch("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := validators.URLParamID(r, "id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			var body genres.GenreInput
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			genre, err := svc.Update(r.Context(), id, body)
			respond(w, r, logg, genre, err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := validators.URLParamID(r, "id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			respondDeleted(w, r, logg, svc.Delete(r.Context(), id))
		})
	}
}
