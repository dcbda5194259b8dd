package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeep/internal/bridge"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
)

type commandsResponse struct {
	Commands []bridge.Command `json:"commands"`
}

// DrainCommands hands all queued commands to the polling agent.
func DrainCommands(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmds := d.Commands.Drain()
		if cmds == nil {
			cmds = []bridge.Command{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(commandsResponse{Commands: cmds})
	}
}

// NotificationClick reports that the user activated a notification.
func NotificationClick(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d.Notifier.HandleClick(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)
	}
}

type historyResponse struct {
	Entries []bridge.HistoryEntry `json:"entries"`
}

// HistorySearch searches the navigation log. Empty queries return the most
// recent entries.
func HistorySearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		maxResults, _ := strconv.Atoi(r.URL.Query().Get("max"))

		entries := d.History.Search(q, maxResults)
		if entries == nil {
			entries = []bridge.HistoryEntry{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(historyResponse{Entries: entries})
	}
}
