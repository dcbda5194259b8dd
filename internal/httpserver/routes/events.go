package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/httpserver/handlers"
	"github.com/tabkeep/tabkeep/internal/httpserver/mw"
)

func init() { Register(registerEvents) }

// Tab events arrive at browsing speed; the limiter only trips on a
// runaway agent.
func registerEvents(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             200,
		RefillPerIPPerMin: 600,
		TrustProxy:        d.TrustProxy,
	})
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), limit).Post("/api/events/tab", handlers.TabEvent(d))
}
