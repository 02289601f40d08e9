package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/movie-seat-selection/api"
)

const (
	statusUp       = "UP"
	statusDegraded = "DEGRADED"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := statusUp

	if app.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.contextGetLogger(r).Warn("redis ping failed", "error", err)
			status = statusDegraded
		}
	}

	resp := api.HealthcheckResponse{
		Status: status,
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
