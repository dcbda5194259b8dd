package tabs

import (
	"context"
	"sync"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/sources/rules"
)

// Triager is what the registry does with a tab once it is gone.
type Triager interface {
	CaptureClosedTab(ctx context.Context, snap domain.TabSnapshot) error
	RetriageNote(ctx context.Context, itemID string) error
}

// Registry tracks live browser tabs by id, holding the last known snapshot
// of each. Editor tabs are tracked separately, as a tab-id to item-id
// association only.
//
// All state is owned here, guarded by one mutex; handlers are injected, not
// ambient, so the registry is testable without a live browser.
type Registry struct {
	mu      sync.Mutex
	tracked map[int]domain.TabSnapshot
	editors map[int]string // tabID -> itemID
	rules   *rules.Provider
	triage  Triager
	log     logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(triage Triager, provider *rules.Provider, log logger.Logger) *Registry {
	return &Registry{
		tracked: make(map[int]domain.TabSnapshot),
		editors: make(map[int]string),
		rules:   provider,
		triage:  triage,
		log:     log,
	}
}

// Track records or updates a tab snapshot, classifying it on every
// navigation: editor URLs move the tab into the editor map (dropping any
// ordinary tracking), internal URLs drop tracking entirely, anything else
// is tracked normally and clears a stale editor association.
func (r *Registry) Track(snap domain.TabSnapshot) {
	rl := r.rules.Current()

	r.mu.Lock()
	defer r.mu.Unlock()

	if itemID, ok := rl.EditorItemID(snap.URL); ok {
		r.editors[snap.TabID] = itemID
		delete(r.tracked, snap.TabID)
		r.log.Debug("tracking editor tab",
			logger.Int("tab_id", snap.TabID),
			logger.String("item_id", itemID))
		return
	}

	delete(r.editors, snap.TabID)

	if snap.URL == "" || rl.IsInternalURL(snap.URL) {
		// Navigated away from trackable territory.
		delete(r.tracked, snap.TabID)
		return
	}

	r.tracked[snap.TabID] = snap
}

// HandleRemoved reacts to a tab closing: editor associations trigger
// re-triage, ordinary snapshots trigger capture. The tracking entry is
// discarded regardless of outcome so a stale snapshot can never be acted
// on twice. Errors are logged here, never propagated into the event
// dispatcher.
func (r *Registry) HandleRemoved(ctx context.Context, tabID int) {
	r.mu.Lock()
	itemID, isEditor := r.editors[tabID]
	snap, isTracked := r.tracked[tabID]
	delete(r.editors, tabID)
	delete(r.tracked, tabID)
	r.mu.Unlock()

	switch {
	case isEditor:
		if err := r.triage.RetriageNote(ctx, itemID); err != nil {
			r.log.Error("re-triage failed",
				logger.Int("tab_id", tabID),
				logger.String("item_id", itemID),
				logger.Error(err))
		}
	case isTracked:
		if err := r.triage.CaptureClosedTab(ctx, snap); err != nil {
			r.log.Error("capture failed",
				logger.Int("tab_id", tabID),
				logger.String("url", snap.URL),
				logger.Error(err))
		}
	}
}

// Snapshot returns the tracked snapshot for a tab id, if any.
func (r *Registry) Snapshot(tabID int) (domain.TabSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.tracked[tabID]
	return snap, ok
}

// EditorItem returns the editor association for a tab id, if any.
func (r *Registry) EditorItem(tabID int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.editors[tabID]
	return id, ok
}

// Teardown drops all tracked state.
func (r *Registry) Teardown() {
	r.mu.Lock()
	r.tracked = make(map[int]domain.TabSnapshot)
	r.editors = make(map[int]string)
	r.mu.Unlock()
}
