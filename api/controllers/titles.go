package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/api/validators"
	"github.com/angelmondragon/streamflix-backend/internal/titles"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

// TitleRoutes mounts the catalog tree under /titles. Series episodes live
// under seasons; a movie has a single episode at /{titleId}/episode.
func TitleRoutes(svc titles.Service, logg *logger.Logger) func(chi.Router) {
	h := &titleHandlers{svc: svc, logg: logg}
	return func(r chi.Router) {
		r.Post("/", h.createTitle)
		r.Get("/", h.listTitles)
		r.Route("/{titleId}", func(r chi.Router) {
			r.Get("/", h.getTitle)
			r.Patch("/", h.updateTitle)
			r.Delete("/", h.deleteTitle)

			r.Post("/seasons", h.createSeason)
			r.Get("/seasons", h.listSeasons)
			r.Route("/seasons/{seasonNumber}", func(r chi.Router) {
				r.Get("/", h.getSeason)
				r.Patch("/", h.updateSeason)
				r.Delete("/", h.deleteSeason)

				r.Post("/episodes", h.createEpisode)
				r.Get("/episodes", h.listEpisodes)
				r.Get("/episodes/{episodeNumber}", h.getEpisode)
				r.Patch("/episodes/{episodeNumber}", h.updateEpisode)
				r.Delete("/episodes/{episodeNumber}", h.deleteEpisode)
			})

			r.Post("/episode", h.createEpisode)
			r.Get("/episode", h.getEpisode)
			r.Patch("/episode", h.updateEpisode)
			r.Delete("/episode", h.deleteEpisode)

			r.Post("/qualities", h.createQuality)
			r.Get("/qualities", h.listQualities)
			r.Get("/qualities/{qualityName}", h.getQuality)
			r.Patch("/qualities/{qualityName}", h.updateQuality)
			r.Delete("/qualities/{qualityName}", h.deleteQuality)
		})
	}
}

type titleHandlers struct {
	svc  titles.Service
	logg *logger.Logger
}

func (h *titleHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	responses.WriteError(r.Context(), h.logg, w, err)
}

func (h *titleHandlers) createTitle(w http.ResponseWriter, r *http.Request) {
	var body titles.CreateTitleInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	title, err := h.svc.CreateTitle(r.Context(), body)
	respondCreated(w, r, h.logg, title, err)
}

func (h *titleHandlers) listTitles(w http.ResponseWriter, r *http.Request) {
	params, err := validators.ParsePageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.svc.ListTitles(r.Context(), params)
	respond(w, r, h.logg, page, err)
}

func (h *titleHandlers) getTitle(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	title, err := h.svc.GetTitle(r.Context(), titleID)
	respond(w, r, h.logg, title, err)
}

func (h *titleHandlers) updateTitle(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.UpdateTitleInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	title, err := h.svc.UpdateTitle(r.Context(), titleID, body)
	respond(w, r, h.logg, title, err)
}

func (h *titleHandlers) deleteTitle(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondDeleted(w, r, h.logg, h.svc.DeleteTitle(r.Context(), titleID))
}

func (h *titleHandlers) createSeason(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.SeasonInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	season, err := h.svc.CreateSeason(r.Context(), titleID, body)
	respondCreated(w, r, h.logg, season, err)
}

func (h *titleHandlers) listSeasons(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	seasons, err := h.svc.ListSeasons(r.Context(), titleID)
	respond(w, r, h.logg, seasons, err)
}

// seasonPath resolves {titleId} and {seasonNumber} together.
func seasonPath(r *http.Request) (uint, int, error) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		return 0, 0, err
	}
	number, err := validators.URLParamInt(r, "seasonNumber")
	if err != nil {
		return 0, 0, err
	}
	return titleID, number, nil
}

func (h *titleHandlers) getSeason(w http.ResponseWriter, r *http.Request) {
	titleID, number, err := seasonPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	season, err := h.svc.GetSeason(r.Context(), titleID, number)
	respond(w, r, h.logg, season, err)
}

func (h *titleHandlers) updateSeason(w http.ResponseWriter, r *http.Request) {
	titleID, number, err := seasonPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.UpdateSeasonInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	season, err := h.svc.UpdateSeason(r.Context(), titleID, number, body)
	respond(w, r, h.logg, season, err)
}

func (h *titleHandlers) deleteSeason(w http.ResponseWriter, r *http.Request) {
	titleID, number, err := seasonPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondDeleted(w, r, h.logg, h.svc.DeleteSeason(r.Context(), titleID, number))
}

// episodePath reads the optional season and episode numbers. Movie routes
// carry neither, so seasonNumber stays nil.
func episodePath(r *http.Request) (titleID uint, seasonNumber *int, episodeNumber int, err error) {
	titleID, err = validators.URLParamID(r, "titleId")
	if err != nil {
		return 0, nil, 0, err
	}
	if chi.URLParam(r, "seasonNumber") != "" {
		n, err := validators.URLParamInt(r, "seasonNumber")
		if err != nil {
			return 0, nil, 0, err
		}
		seasonNumber = &n
	}
	if chi.URLParam(r, "episodeNumber") != "" {
		episodeNumber, err = validators.URLParamInt(r, "episodeNumber")
		if err != nil {
			return 0, nil, 0, err
		}
	}
	return titleID, seasonNumber, episodeNumber, nil
}

func (h *titleHandlers) createEpisode(w http.ResponseWriter, r *http.Request) {
	titleID, seasonNumber, _, err := episodePath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.CreateEpisodeInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	episode, err := h.svc.CreateEpisode(r.Context(), titleID, seasonNumber, body)
	respondCreated(w, r, h.logg, episode, err)
}

func (h *titleHandlers) listEpisodes(w http.ResponseWriter, r *http.Request) {
	titleID, number, err := seasonPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	episodes, err := h.svc.ListEpisodes(r.Context(), titleID, number)
	respond(w, r, h.logg, episodes, err)
}

func (h *titleHandlers) getEpisode(w http.ResponseWriter, r *http.Request) {
	titleID, seasonNumber, episodeNumber, err := episodePath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	episode, err := h.svc.GetEpisode(r.Context(), titleID, seasonNumber, episodeNumber)
	respond(w, r, h.logg, episode, err)
}

func (h *titleHandlers) updateEpisode(w http.ResponseWriter, r *http.Request) {
	titleID, seasonNumber, episodeNumber, err := episodePath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.UpdateEpisodeInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	episode, err := h.svc.UpdateEpisode(r.Context(), titleID, seasonNumber, episodeNumber, body)
	respond(w, r, h.logg, episode, err)
}

func (h *titleHandlers) deleteEpisode(w http.ResponseWriter, r *http.Request) {
	titleID, seasonNumber, episodeNumber, err := episodePath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondDeleted(w, r, h.logg, h.svc.DeleteEpisode(r.Context(), titleID, seasonNumber, episodeNumber))
}

func (h *titleHandlers) createQuality(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.QualityInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	quality, err := h.svc.CreateQuality(r.Context(), titleID, body)
	respondCreated(w, r, h.logg, quality, err)
}

func (h *titleHandlers) listQualities(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	qualities, err := h.svc.ListQualities(r.Context(), titleID)
	respond(w, r, h.logg, qualities, err)
}

func (h *titleHandlers) getQuality(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	quality, err := h.svc.GetQuality(r.Context(), titleID, chi.URLParam(r, "qualityName"))
	respond(w, r, h.logg, quality, err)
}

func (h *titleHandlers) updateQuality(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body titles.QualityInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	quality, err := h.svc.UpdateQuality(r.Context(), titleID, chi.URLParam(r, "qualityName"), body)
	respond(w, r, h.logg, quality, err)
}

func (h *titleHandlers) deleteQuality(w http.ResponseWriter, r *http.Request) {
	titleID, err := validators.URLParamID(r, "titleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondDeleted(w, r, h.logg, h.svc.DeleteQuality(r.Context(), titleID, chi.URLParam(r, "qualityName")))
}
