package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/search"
)

type searchResponse struct {
	Matches []search.Match `json:"matches"`
}

// Search ranks items across all collections against a free-text query.
func Search(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		maxResults, _ := strconv.Atoi(r.URL.Query().Get("max"))

		snapshot, ok := d.State.Current()
		if !ok {
			if err := d.State.RefreshFromStorage(r.Context()); err != nil {
				d.Logger.Error("state refresh failed", logger.Error(err))
				http.Error(w, "state unavailable", http.StatusServiceUnavailable)
				return
			}
			snapshot, _ = d.State.Current()
		}

		collections := map[domain.Collection][]domain.Item{
			domain.CollectionInbox:    snapshot.Inbox,
			domain.CollectionDeferred: snapshot.Deferred,
			domain.CollectionArchive:  snapshot.Archive,
			domain.CollectionNotes:    snapshot.Notes,
		}
		matches := search.Rank(query, collections, now(), maxResults)
		if matches == nil {
			matches = []search.Match{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(searchResponse{Matches: matches})
	}
}
