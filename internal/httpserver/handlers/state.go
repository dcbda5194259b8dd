package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/logger"
)

type stateResponse struct {
	Inbox        []domain.Item      `json:"inbox"`
	Deferred     []domain.Item      `json:"deferred"`
	Archive      []domain.Item      `json:"archive"`
	Trash        []domain.Item      `json:"trash"`
	Notes        []domain.Item      `json:"notes"`
	Preferences  domain.Preferences `json:"preferences"`
	OpenItemIDs  []string           `json:"openItemIds"`
	OpenTabCount int                `json:"openTabCount"`
	Checking     bool               `json:"checking"`
}

// State returns the full triage snapshot plus which inbox items currently
// have an open tab.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := d.State.Current()
		if !ok {
			if err := d.State.RefreshFromStorage(r.Context()); err != nil {
				d.Logger.Error("state refresh failed", logger.Error(err))
				http.Error(w, "state unavailable", http.StatusServiceUnavailable)
				return
			}
			snapshot, _ = d.State.Current()
		}

		open := make([]string, 0)
		for _, item := range snapshot.Inbox {
			if d.Detector.IsOpen(item) {
				open = append(open, item.ID)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stateResponse{
			Inbox:        snapshot.Inbox,
			Deferred:     snapshot.Deferred,
			Archive:      snapshot.Archive,
			Trash:        snapshot.Trash,
			Notes:        snapshot.Notes,
			Preferences:  snapshot.Preferences,
			OpenItemIDs:  open,
			OpenTabCount: d.Detector.OpenTabCount(),
			Checking:     d.Detector.Checking(),
		})
	}
}
