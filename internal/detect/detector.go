package detect

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
)

const (
	// DefaultDebounceWindow collapses bursts of tab events into one recheck.
	DefaultDebounceWindow = 300 * time.Millisecond
	// DefaultPollInterval is the periodic full recheck interval.
	DefaultPollInterval = 15 * time.Second
	// maxParallelQueries bounds concurrent live-tab lookups per check.
	maxParallelQueries = 8
)

// LiveTabs is the slice of the live tab registry the detector needs.
type LiveTabs interface {
	FindTabMatching(ctx context.Context, url string) (*domain.TabSnapshot, error)
	SubscribeTabEvents(fn func()) (unsubscribe func())
}

// Detector reconciles persisted candidate items against currently open
// browser tabs. Rechecks are driven by a periodic poll and by live tab
// events coalesced through a debounce window, so a burst of events costs
// one recheck, not one per event.
type Detector struct {
	live LiveTabs
	log  logger.Logger

	window       time.Duration
	pollInterval time.Duration

	mu          sync.Mutex
	candidates  []domain.Item
	openIDs     map[string]struct{}
	openTabs    int
	debounce    *time.Timer
	unsubscribe func()
	started     bool

	checking atomic.Bool
	stopCh   chan struct{}
	runCtx   context.Context
}

// New creates a detector. Zero durations select the defaults.
func New(live LiveTabs, log logger.Logger, window, pollInterval time.Duration) *Detector {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Detector{
		live:         live,
		log:          log,
		window:       window,
		pollInterval: pollInterval,
		openIDs:      make(map[string]struct{}),
		stopCh:       make(chan struct{}),
	}
}

// Start subscribes to live tab events and begins the poll loop, running an
// immediate first check.
func (d *Detector) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = true
	d.runCtx = ctx
	d.unsubscribe = d.live.SubscribeTabEvents(d.bump)
	d.mu.Unlock()

	d.check(ctx)

	ticker := time.NewTicker(d.pollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.check(ctx)
			case <-d.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Teardown cancels the pending debounce timer, deregisters the live-tab
// listener and stops the poll loop. Leaking either after teardown is a
// defect, so this is safe to call exactly once.
func (d *Detector) Teardown() {
	d.mu.Lock()
	if d.debounce != nil {
		d.debounce.Stop()
		d.debounce = nil
	}
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	close(d.stopCh)
}

// SetCandidates replaces the candidate list and schedules a recheck.
func (d *Detector) SetCandidates(items []domain.Item) {
	d.mu.Lock()
	d.candidates = append([]domain.Item{}, items...)
	d.mu.Unlock()
	d.bump()
}

// IsOpen reports whether a candidate item currently has a live tab.
func (d *Detector) IsOpen(item domain.Item) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.openIDs[item.ID]
	return ok
}

// OpenTabCount returns the number of distinct live tabs matching any
// candidate, as of the last check.
func (d *Detector) OpenTabCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openTabs
}

// Checking reports whether a recheck is currently in flight, for UI
// feedback.
func (d *Detector) Checking() bool {
	return d.checking.Load()
}

// Refresh runs a full check immediately, bypassing the debounce window.
func (d *Detector) Refresh(ctx context.Context) {
	d.check(ctx)
}

// bump arms or re-arms the debounce timer. Every triggering event resets
// it, so only the last event of a burst fires a check.
func (d *Detector) bump() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return
	}
	if d.debounce != nil {
		d.debounce.Reset(d.window)
		return
	}
	ctx := d.runCtx
	d.debounce = time.AfterFunc(d.window, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.check(ctx)
	})
}

// check queries the live registry for every candidate URL in parallel and
// rebuilds the open sets.
func (d *Detector) check(ctx context.Context) {
	d.checking.Store(true)
	defer d.checking.Store(false)

	d.mu.Lock()
	candidates := append([]domain.Item{}, d.candidates...)
	d.mu.Unlock()

	var (
		resultMu sync.Mutex
		openIDs  = make(map[string]struct{}, len(candidates))
		openTabs = make(map[int]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQueries)

	for _, candidate := range candidates {
		if candidate.URL == "" || candidate.ID == "" {
			continue
		}
		candidate := candidate
		g.Go(func() error {
			tab, err := d.live.FindTabMatching(gctx, candidate.URL)
			if err != nil || tab == nil {
				return nil // degraded or no match, never fails the check
			}
			resultMu.Lock()
			openIDs[candidate.ID] = struct{}{}
			openTabs[tab.TabID] = struct{}{}
			resultMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	d.mu.Lock()
	d.openIDs = openIDs
	d.openTabs = len(openTabs)
	d.mu.Unlock()

	d.log.Debug("open-item check complete",
		logger.Int("candidates", len(candidates)),
		logger.Int("open_items", len(openIDs)),
		logger.Int("open_tabs", len(openTabs)))
}
