package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/sources/rules"
)

// Store is the slice of the collection store the engine needs. Each write
// replaces a whole collection; there is no cross-collection atomicity.
type Store interface {
	GetCollection(ctx context.Context, col domain.Collection) ([]domain.Item, error)
	SetCollection(ctx context.Context, col domain.Collection, items []domain.Item) error
}

// Engine converts closing tabs into inbox items and returns notes to the
// inbox when their editor tab closes.
//
// Dedup is at-least-once, not transactional: collections are scanned and
// rewritten one by one, so two captures racing on the same URL can briefly
// leave a duplicate in the inbox. The next capture of that URL removes it.
type Engine struct {
	store Store
	rules *rules.Provider
	log   logger.Logger
	now   func() time.Time
}

// New creates a capture engine.
func New(store Store, provider *rules.Provider, log logger.Logger) *Engine {
	return &Engine{
		store: store,
		rules: provider,
		log:   log,
		now:   time.Now,
	}
}

// CaptureClosedTab turns a closed tab's last snapshot into a fresh inbox
// item, removing any prior records with the same normalized URL from every
// dedupable collection first. Internal and empty URLs are skipped.
func (e *Engine) CaptureClosedTab(ctx context.Context, snap domain.TabSnapshot) error {
	r := e.rules.Current()
	if snap.URL == "" || r.IsInternalURL(snap.URL) {
		e.log.Debug("skipping capture of internal tab",
			logger.Int("tab_id", snap.TabID),
			logger.String("url", snap.URL))
		return nil
	}

	extra := r.TrackingParams()
	normalized := domain.NormalizeURL(snap.URL, extra...)

	for _, col := range domain.DedupCollections {
		removed, err := e.dedupCollection(ctx, col, normalized, extra)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", col, err)
		}
		if removed > 0 {
			e.log.Debug("removed duplicate records",
				logger.String("collection", string(col)),
				logger.Int("count", removed),
				logger.String("normalized_url", normalized))
		}
	}

	// Re-read the inbox instead of reusing the pre-dedup snapshot: another
	// operation may have written it while the scan was in flight.
	inbox, err := e.store.GetCollection(ctx, domain.CollectionInbox)
	if err != nil {
		return fmt.Errorf("reload inbox: %w", err)
	}

	title := snap.Title
	if title == "" {
		title = snap.URL
	}
	item := domain.NewItem(title, normalized, "", snap.Favicon, e.now())

	inbox = append([]domain.Item{item}, inbox...)
	if err := e.store.SetCollection(ctx, domain.CollectionInbox, inbox); err != nil {
		return fmt.Errorf("write inbox: %w", err)
	}

	e.log.Info("captured closed tab",
		logger.String("item_id", item.ID),
		logger.String("title", item.Title),
		logger.String("normalized_url", normalized))

	return nil
}

// dedupCollection removes records matching the normalized URL from one
// collection, writing it back only when something was removed.
func (e *Engine) dedupCollection(ctx context.Context, col domain.Collection, normalized string, extra []string) (int, error) {
	items, err := e.store.GetCollection(ctx, col)
	if err != nil {
		return 0, err
	}

	kept := items[:0:0]
	for _, item := range items {
		if item.URL != "" && domain.NormalizeURL(item.URL, extra...) == normalized {
			continue
		}
		kept = append(kept, item)
	}

	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := e.store.SetCollection(ctx, col, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// RetriageNote returns a note to the inbox after its editor tab closed.
// A note already in the inbox, or an unknown id, is a successful no-op.
func (e *Engine) RetriageNote(ctx context.Context, itemID string) error {
	inbox, err := e.store.GetCollection(ctx, domain.CollectionInbox)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, item := range inbox {
		if item.ID == itemID {
			e.log.Debug("note already in inbox", logger.String("item_id", itemID))
			return nil
		}
	}

	notes, err := e.store.GetCollection(ctx, domain.CollectionNotes)
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	idx := -1
	for i, item := range notes {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		e.log.Debug("retriage for unknown note id, treating as resolved",
			logger.String("item_id", itemID))
		return nil
	}

	note := notes[idx]
	note.Collection = domain.CollectionInbox

	inbox = append([]domain.Item{note}, inbox...)
	if err := e.store.SetCollection(ctx, domain.CollectionInbox, inbox); err != nil {
		return fmt.Errorf("write inbox: %w", err)
	}

	remaining := append(append([]domain.Item{}, notes[:idx]...), notes[idx+1:]...)
	if err := e.store.SetCollection(ctx, domain.CollectionNotes, remaining); err != nil {
		return fmt.Errorf("write notes: %w", err)
	}

	e.log.Info("re-triaged note to inbox", logger.String("item_id", itemID))
	return nil
}
