package bridge

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// History is a navigation log fed by mirror updates, backing the history
// search contract. It is bounded; the oldest entries are evicted first.
type History struct {
	mu      sync.Mutex
	entries map[string]*HistoryEntry // url -> entry
	cap     int
}

const defaultHistoryCap = 2048

// NewHistory creates an empty navigation log.
func NewHistory() *History {
	return &History{
		entries: make(map[string]*HistoryEntry),
		cap:     defaultHistoryCap,
	}
}

// Record notes a visit to url at the given time.
func (h *History) Record(url, title string, at time.Time) {
	if url == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.entries[url]; ok {
		entry.VisitCount++
		entry.LastVisitTime = at.UnixMilli()
		if title != "" {
			entry.Title = title
		}
		return
	}

	if len(h.entries) >= h.cap {
		h.evictOldest()
	}
	h.entries[url] = &HistoryEntry{
		URL:           url,
		Title:         title,
		LastVisitTime: at.UnixMilli(),
		VisitCount:    1,
	}
}

// evictOldest removes the least recently visited entry. Caller holds the lock.
func (h *History) evictOldest() {
	var oldestURL string
	var oldestAt int64
	for url, entry := range h.entries {
		if oldestURL == "" || entry.LastVisitTime < oldestAt {
			oldestURL = url
			oldestAt = entry.LastVisitTime
		}
	}
	if oldestURL != "" {
		delete(h.entries, oldestURL)
	}
}

// Search returns entries whose URL or title contains text, most recent
// first. Empty text matches everything. No data means empty results, not
// an error.
func (h *History) Search(text string, maxResults int) []HistoryEntry {
	if maxResults <= 0 {
		maxResults = 100
	}
	needle := strings.ToLower(text)

	h.mu.Lock()
	matches := make([]HistoryEntry, 0, len(h.entries))
	for _, entry := range h.entries {
		if needle == "" ||
			strings.Contains(strings.ToLower(entry.URL), needle) ||
			strings.Contains(strings.ToLower(entry.Title), needle) {
			matches = append(matches, *entry)
		}
	}
	h.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].LastVisitTime > matches[j].LastVisitTime
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
