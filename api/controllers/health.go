package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck names a dependency probed by the readiness endpoint.
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

const envHeader = "X-StreamFlix-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 with the failing names.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failures := map[string]string{}
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				failures[check.Name] = err.Error()
			}
		}

		if len(failures) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failures)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
