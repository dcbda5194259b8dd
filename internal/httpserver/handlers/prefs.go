package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/logger"
	redisstore "github.com/tabkeep/tabkeep/internal/store/redis"
)

// GetPreferences returns the stored user preferences.
func GetPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		prefs, err := d.Store.GetPreferences(r.Context())
		if err != nil {
			d.Logger.Error("read preferences", logger.Error(err))
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(prefs)
	}
}

// SetPreferences stores user preferences. The write publishes a change
// event, so the reactive snapshot picks it up like any collection write.
func SetPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		var prefs domain.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, "malformed preferences", http.StatusBadRequest)
			return
		}
		if err := d.Store.SetPreferences(r.Context(), prefs); err != nil {
			d.Logger.Error("write preferences", logger.Error(err))
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type suggestionsRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

type suggestionsResponse struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// CacheSuggestions stores computed tag suggestions for a URL so repeat
// triage of the same page skips recomputation.
func CacheSuggestions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		var req suggestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}
		normalized := domain.NormalizeURL(req.URL)
		if err := d.Store.CacheSuggestions(r.Context(), normalized, req.Tags, redisstore.DefaultSuggestionTTL); err != nil {
			d.Logger.Error("cache suggestions", logger.Error(err))
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSuggestions returns cached tag suggestions for a URL, empty when the
// cache holds nothing.
func GetSuggestions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		rawURL := r.URL.Query().Get("url")
		if rawURL == "" {
			http.Error(w, "missing url", http.StatusBadRequest)
			return
		}
		normalized := domain.NormalizeURL(rawURL)
		tags, err := d.Store.GetCachedSuggestions(r.Context(), normalized)
		if err != nil {
			d.Logger.Error("read suggestions", logger.Error(err))
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}
		if tags == nil {
			tags = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(suggestionsResponse{URL: normalized, Tags: tags})
	}
}
