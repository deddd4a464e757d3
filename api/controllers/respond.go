package controllers

import (
	"net/http"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/types"
)

func respond(w http.ResponseWriter, r *http.Request, logg *logger.Logger, data any, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, data)
}

func respondCreated(w http.ResponseWriter, r *http.Request, logg *logger.Logger, data any, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteCreated(w, data)
}

func respondDeleted(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	respond(w, r, logg, types.DeletedResponse{Deleted: true}, err)
}
