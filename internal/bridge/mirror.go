package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
)

// Mirror is the daemon-side picture of the browser's open tabs, rebuilt
// from agent-reported events. It implements LiveTabs: queries answer from
// the mirror, mutations enqueue commands for the agent.
type Mirror struct {
	mu          sync.Mutex
	tabs        map[int]domain.TabSnapshot
	subscribers map[int]func()
	nextSub     int

	queue   *Queue
	history *History
	log     logger.Logger
	now     func() time.Time
}

// NewMirror creates an empty tab mirror that pushes mutations through queue
// and records navigations into history. history may be nil.
func NewMirror(queue *Queue, history *History, log logger.Logger) *Mirror {
	return &Mirror{
		tabs:        make(map[int]domain.TabSnapshot),
		subscribers: make(map[int]func()),
		queue:       queue,
		history:     history,
		log:         log,
		now:         time.Now,
	}
}

// ApplyEvent folds one agent-reported event into the mirror and wakes
// subscribers. Unknown kinds are logged and dropped.
func (m *Mirror) ApplyEvent(ev TabEvent) {
	switch ev.Kind {
	case TabCreated, TabUpdated:
		if ev.Tab == nil {
			m.log.Warn("tab event without snapshot", logger.String("kind", ev.Kind))
			return
		}
		m.mu.Lock()
		m.tabs[ev.Tab.TabID] = *ev.Tab
		m.mu.Unlock()
		if m.history != nil {
			m.history.Record(ev.Tab.URL, ev.Tab.Title, m.now())
		}
	case TabRemoved:
		m.mu.Lock()
		delete(m.tabs, ev.TabID)
		m.mu.Unlock()
	case TabFocus:
		// Focus changes carry no state the mirror keeps, but open-item
		// rechecks key off them.
	default:
		m.log.Warn("unknown tab event kind", logger.String("kind", ev.Kind))
		return
	}
	m.notify()
}

func (m *Mirror) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// QueryAll returns a snapshot of every mirrored tab.
func (m *Mirror) QueryAll(_ context.Context) ([]domain.TabSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TabSnapshot, 0, len(m.tabs))
	for _, tab := range m.tabs {
		out = append(out, tab)
	}
	return out, nil
}

// FindTabMatching returns a mirrored tab whose normalized URL equals the
// normalized query URL, or nil when no tab matches.
func (m *Mirror) FindTabMatching(_ context.Context, url string) (*domain.TabSnapshot, error) {
	want := domain.NormalizeURL(url)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tab := range m.tabs {
		if domain.NormalizeURL(tab.URL) == want {
			found := tab
			return &found, nil
		}
	}
	return nil, nil
}

// CloseTabs asks the agent to close the given tabs. Pinned tabs are
// filtered out here so a stale caller list can never close one.
func (m *Mirror) CloseTabs(_ context.Context, tabIDs []int) error {
	m.mu.Lock()
	closable := make([]int, 0, len(tabIDs))
	for _, id := range tabIDs {
		if tab, ok := m.tabs[id]; ok && tab.Pinned {
			continue
		}
		closable = append(closable, id)
	}
	m.mu.Unlock()

	if len(closable) == 0 {
		return nil
	}
	m.queue.Enqueue(Command{Kind: CmdCloseTabs, TabIDs: closable})
	return nil
}

// CreateTab asks the agent to open url in a new tab.
func (m *Mirror) CreateTab(_ context.Context, url string) error {
	m.queue.Enqueue(Command{Kind: CmdCreateTab, URL: url})
	return nil
}

// OpenPopup asks the agent to open its triage popup.
func (m *Mirror) OpenPopup(_ context.Context) error {
	m.queue.Enqueue(Command{Kind: CmdOpenPopup})
	return nil
}

// SubscribeTabEvents registers fn to run after every applied event. The
// returned disposer deregisters it and is safe to call twice.
func (m *Mirror) SubscribeTabEvents(fn func()) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

// Teardown drops all subscribers and mirrored tabs.
func (m *Mirror) Teardown() {
	m.mu.Lock()
	m.subscribers = make(map[int]func())
	m.tabs = make(map[int]domain.TabSnapshot)
	m.mu.Unlock()
}
