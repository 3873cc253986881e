package app

import (
	"net/http"

	"github.com/popcornpalace/booking-api/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "UP",
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

func (app *Application) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	if app.openapiJSON == nil {
		app.notFoundResponse(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(app.openapiJSON)
}
