package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/httpserver/handlers"
	"github.com/tabkeep/tabkeep/internal/httpserver/mw"
)

func init() { Register(registerPrefs) }

func registerPrefs(r chi.Router, d deps.Deps) {
	sub := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Get("/api/preferences", handlers.GetPreferences(d))
	sub.Post("/api/preferences", handlers.SetPreferences(d))
	sub.Get("/api/suggestions", handlers.GetSuggestions(d))
	sub.Post("/api/suggestions", handlers.CacheSuggestions(d))
}
