package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/httpserver/handlers"
	"github.com/tabkeep/tabkeep/internal/httpserver/mw"
)

func init() { Register(registerItems) }

func registerItems(r chi.Router, d deps.Deps) {
	sub := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Post("/api/items/{id}/schedule", handlers.ScheduleItem(d))
	sub.Post("/api/items/{id}/restore", handlers.RestoreItem(d))
	sub.Post("/api/items/{id}/delete", handlers.DeleteItem(d))
	sub.Post("/api/items/{id}/fire", handlers.FireReminder(d))
	sub.Get("/api/reminders", handlers.ListReminders(d))
}
