package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rcssa/match-api/internal/api"
	apiMiddleware "github.com/rcssa/match-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewCORSMiddleware(app.config.Server.AllowedOrigins))

	profileHandler := api.NewProfileHandler(app.profileService, app.rules)

	var checker api.HealthChecker
	if app.db != nil {
		checker = app.db
	}
	healthHandler := api.NewHealthHandler(checker)

	r.Route("/api", func(r chi.Router) {
		r.Post("/profiles", profileHandler.SubmitProfile)
		r.Get("/profiles/{id}/match", profileHandler.CheckMatch)
	})

	r.Get("/health", healthHandler.Health)

	return r
}
