package controllers

import (
	"net/http"

	"github.com/angelmondragon/streamflix-backend/api/middleware"
	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/internal/users"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

// currentUserID pulls the authenticated user set by middleware.Auth.
func currentUserID(r *http.Request) (uint, error) {
	id := middleware.UserIDFromContext(r.Context())
	if id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	return id, nil
}

func UsersMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
