package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/httpserver/handlers"
	"github.com/tabkeep/tabkeep/internal/httpserver/mw"
)

func init() { Register(registerBridge) }

func registerBridge(r chi.Router, d deps.Deps) {
	sub := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Get("/api/bridge/commands", handlers.DrainCommands(d))
	sub.Post("/api/bridge/notifications/{id}/click", handlers.NotificationClick(d))
	sub.Get("/api/history", handlers.HistorySearch(d))
}
