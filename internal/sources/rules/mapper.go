package rules

import (
	"net/url"
	"strings"
	"sync"
)

// Built-in defaults, used when the rules file is absent or silent.
var (
	defaultInternalPrefixes = []string{
		"chrome://",
		"chrome-extension://",
		"edge://",
		"brave://",
		"about:",
		"moz-extension://",
	}
	defaultEditorPrefix = "http://localhost:8710/editor"
	defaultEditorParam  = "note"
)

// Rules is the resolved, immutable rule set consulted by the capture path
// and the tab registry. Build a new one and swap it through a Provider
// rather than mutating in place.
type Rules struct {
	trackingParams   []string
	internalPrefixes []string
	editorPrefix     string
	editorParam      string
}

// Map resolves a parsed file config (possibly nil) into a rule set.
func Map(config *FileConfig) *Rules {
	r := &Rules{
		internalPrefixes: defaultInternalPrefixes,
		editorPrefix:     defaultEditorPrefix,
		editorParam:      defaultEditorParam,
	}

	if config == nil {
		return r
	}

	if len(config.TrackingParams) > 0 {
		r.trackingParams = append([]string(nil), config.TrackingParams...)
	}
	if len(config.InternalPrefixes) > 0 {
		merged := append([]string(nil), defaultInternalPrefixes...)
		merged = append(merged, config.InternalPrefixes...)
		r.internalPrefixes = merged
	}
	if config.EditorPrefix != "" {
		r.editorPrefix = config.EditorPrefix
	}
	if config.EditorParam != "" {
		r.editorParam = config.EditorParam
	}

	return r
}

// TrackingParams returns the extra tracking parameter names to strip.
func (r *Rules) TrackingParams() []string {
	return r.trackingParams
}

// IsInternalURL reports whether raw points at a page that must never be
// captured. The editor is internal too: editor closures are re-triaged,
// not captured.
func (r *Rules) IsInternalURL(raw string) bool {
	if raw == "" {
		return true
	}
	for _, prefix := range r.internalPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return true
		}
	}
	return strings.HasPrefix(raw, r.editorPrefix)
}

// EditorItemID extracts the note item id from an editor tab URL.
// Returns ("", false) when raw is not an editor URL or carries no id.
func (r *Rules) EditorItemID(raw string) (string, bool) {
	if !strings.HasPrefix(raw, r.editorPrefix) {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	id := u.Query().Get(r.editorParam)
	if id == "" {
		return "", false
	}
	return id, true
}

// Provider hands out the current rule set and lets the reloader swap in a
// new one atomically.
type Provider struct {
	mu      sync.RWMutex
	current *Rules
}

// NewProvider creates a provider seeded with the given rule set.
func NewProvider(r *Rules) *Provider {
	if r == nil {
		r = Map(nil)
	}
	return &Provider{current: r}
}

// Current returns the active rule set.
func (p *Provider) Current() *Rules {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Swap replaces the active rule set.
func (p *Provider) Swap(r *Rules) {
	if r == nil {
		return
	}
	p.mu.Lock()
	p.current = r
	p.mu.Unlock()
}
