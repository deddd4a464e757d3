package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
)

// URLParamID parses a positive numeric path parameter such as {titleId}.
func URLParamID(r *http.Request, key string) (uint, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a positive integer", key).WithDetails(map[string]any{"field": key})
	}
	return uint(value), nil
}

// URLParamInt parses a non-negative numeric path parameter such as {episodeNumber}.
func URLParamInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a non-negative integer", key).WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// RequiredQuery returns a trimmed query value or a validation error when it is blank.
func RequiredQuery(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s query parameter is required", key).WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
