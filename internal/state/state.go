package state

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	redisstore "github.com/tabkeep/tabkeep/internal/store/redis"
)

// Snapshot is the in-memory mirror of every persisted collection. Fields
// are never nil: a deleted key maps to an empty list or the default
// preferences.
type Snapshot struct {
	Inbox       []domain.Item      `json:"inbox"`
	Deferred    []domain.Item      `json:"deferred"`
	Archive     []domain.Item      `json:"archive"`
	Trash       []domain.Item      `json:"trash"`
	Notes       []domain.Item      `json:"notes"`
	Preferences domain.Preferences `json:"userPreferences"`
}

// Loader performs full reloads from the persistent store.
type Loader interface {
	GetCollections(ctx context.Context, cols ...domain.Collection) (map[domain.Collection][]domain.Item, error)
	GetPreferences(ctx context.Context) (domain.Preferences, error)
}

// Listener receives the updated snapshot after every applied change.
type Listener func(Snapshot)

// Store keeps UI surfaces consistent with the persistent collections. It
// applies granular updates from change notifications when it already holds
// a snapshot, and falls back to a full reload otherwise.
type Store struct {
	mu          sync.Mutex
	loader      Loader
	log         logger.Logger
	snapshot    *Snapshot
	subscribers map[int]Listener
	nextID      int
}

// New creates an empty reactive store. No snapshot exists until the first
// change notification or an explicit RefreshFromStorage.
func New(loader Loader, log logger.Logger) *Store {
	return &Store{
		loader:      loader,
		log:         log,
		subscribers: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its disposer. Every subscribe
// has exactly one matching unsubscribe; calling the disposer twice is safe.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Current returns the present snapshot, if one has been loaded.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// Apply folds one or more change notifications into the snapshot and
// notifies subscribers once. Without an existing snapshot it performs a
// full reload instead. Unmapped keys are ignored.
func (s *Store) Apply(ctx context.Context, changes ...redisstore.Change) {
	s.mu.Lock()

	if s.snapshot == nil {
		s.mu.Unlock()
		if err := s.RefreshFromStorage(ctx); err != nil {
			s.log.Error("full reload failed", logger.Error(err))
		}
		return
	}

	touched := false
	for _, change := range changes {
		if s.applyOne(change) {
			touched = true
		}
	}

	if !touched {
		s.mu.Unlock()
		return
	}

	snapshot := *s.snapshot
	listeners := s.listeners()
	s.mu.Unlock()

	s.notify(listeners, snapshot)
}

// applyOne mutates the held snapshot for a single key. Caller holds the lock.
func (s *Store) applyOne(change redisstore.Change) bool {
	switch change.Key {
	case string(domain.CollectionInbox):
		s.snapshot.Inbox = decodeItems(change.Value)
	case string(domain.CollectionDeferred):
		s.snapshot.Deferred = decodeItems(change.Value)
	case string(domain.CollectionArchive):
		s.snapshot.Archive = decodeItems(change.Value)
	case string(domain.CollectionTrash):
		s.snapshot.Trash = decodeItems(change.Value)
	case string(domain.CollectionNotes):
		s.snapshot.Notes = decodeItems(change.Value)
	case redisstore.PreferencesChangeKey:
		s.snapshot.Preferences = decodePreferences(change.Value)
	default:
		return false
	}
	return true
}

// decodeItems parses a collection value, mapping deletion and malformed
// payloads to an empty list so state never holds a nil field.
func decodeItems(value json.RawMessage) []domain.Item {
	if len(value) == 0 {
		return []domain.Item{}
	}
	var items []domain.Item
	if err := json.Unmarshal(value, &items); err != nil || items == nil {
		return []domain.Item{}
	}
	return items
}

func decodePreferences(value json.RawMessage) domain.Preferences {
	if len(value) == 0 {
		return domain.DefaultPreferences()
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(value, &prefs); err != nil {
		return domain.DefaultPreferences()
	}
	return prefs
}

// RefreshFromStorage forces a full reload and re-notifies. Manual recovery
// path for when granular updates are suspected stale.
func (s *Store) RefreshFromStorage(ctx context.Context) error {
	collections, err := s.loader.GetCollections(ctx, domain.AllCollections...)
	if err != nil {
		return err
	}
	prefs, err := s.loader.GetPreferences(ctx)
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		Inbox:       orEmpty(collections[domain.CollectionInbox]),
		Deferred:    orEmpty(collections[domain.CollectionDeferred]),
		Archive:     orEmpty(collections[domain.CollectionArchive]),
		Trash:       orEmpty(collections[domain.CollectionTrash]),
		Notes:       orEmpty(collections[domain.CollectionNotes]),
		Preferences: prefs,
	}

	s.mu.Lock()
	s.snapshot = &snapshot
	listeners := s.listeners()
	s.mu.Unlock()

	s.notify(listeners, snapshot)
	return nil
}

// Run consumes the store's change feed until the channel closes or ctx is
// cancelled. Intended to be launched once at startup.
func (s *Store) Run(ctx context.Context, changes <-chan redisstore.Change) {
	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			s.Apply(ctx, change)
		case <-ctx.Done():
			return
		}
	}
}

// listeners copies the subscriber list. Caller holds the lock.
func (s *Store) listeners() []Listener {
	out := make([]Listener, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		out = append(out, fn)
	}
	return out
}

// notify calls every listener synchronously. Each call is recovered so one
// failing subscriber cannot block the rest.
func (s *Store) notify(listeners []Listener, snapshot Snapshot) {
	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("state subscriber panicked",
						logger.String("panic", toString(r)))
				}
			}()
			fn(snapshot)
		}()
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}

func orEmpty(items []domain.Item) []domain.Item {
	if items == nil {
		return []domain.Item{}
	}
	return items
}
