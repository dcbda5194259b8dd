package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tabkeep/tabkeep/internal/bridge"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/logger"
)

// TabEvent ingests one agent-reported tab lifecycle event. The mirror and
// the tracking registry both consume it; a removal of a tracked tab is what
// triggers capture.
func TabEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev bridge.TabEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "malformed event", http.StatusBadRequest)
			return
		}

		switch ev.Kind {
		case bridge.TabCreated, bridge.TabUpdated:
			if ev.Tab == nil {
				http.Error(w, "event without tab snapshot", http.StatusBadRequest)
				return
			}
			d.Mirror.ApplyEvent(ev)
			d.Registry.Track(*ev.Tab)
		case bridge.TabRemoved:
			d.Mirror.ApplyEvent(ev)
			d.Registry.HandleRemoved(r.Context(), ev.TabID)
		case bridge.TabFocus:
			d.Mirror.ApplyEvent(ev)
		default:
			d.Logger.Debug("dropping tab event", logger.String("kind", ev.Kind))
			http.Error(w, "unknown event kind", http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}
