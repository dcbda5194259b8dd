package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
)

const (
	// DefaultMinDelay is the floor for alarm delays; the registry rejects
	// zero and negative delays.
	DefaultMinDelay = 30 * time.Second
	// DefaultTick is how often the fire loop polls for due alarms.
	DefaultTick = 5 * time.Second
)

// ErrItemNotFound is returned when a schedule request names an unknown item.
var ErrItemNotFound = errors.New("item not found")

// Store is the slice of the collection store the scheduler needs.
type Store interface {
	GetCollection(ctx context.Context, col domain.Collection) ([]domain.Item, error)
	SetCollection(ctx context.Context, col domain.Collection, items []domain.Item) error
}

// AlarmRegistry is the deferred-callback scheduler contract.
type AlarmRegistry interface {
	CreateAlarm(ctx context.Context, name string, fireAt time.Time) error
	ClearAlarm(ctx context.Context, name string) (bool, error)
	ListAlarms(ctx context.Context) ([]domain.Alarm, error)
	ClaimDueAlarms(ctx context.Context, now time.Time) ([]string, error)
}

// Notification is a user-visible reminder message.
type Notification struct {
	ID      string
	Title   string
	Message string
	Sticky  bool
	Buttons []string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Scheduler is the reminder state machine: it moves items into the deferred
// collection with a registered alarm and, when the alarm fires, moves them
// back to the inbox.
//
// Firing is idempotent: an item already gone from deferred, or already back
// in the inbox, makes the fire a no-op. That, not locking, is what keeps
// duplicate fires and racing user actions safe.
type Scheduler struct {
	store    Store
	alarms   AlarmRegistry
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
	minDelay time.Duration
	tick     time.Duration
	stopCh   chan struct{}
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(store Store, alarms AlarmRegistry, notifier Notifier, log logger.Logger, minDelay, tick time.Duration) *Scheduler {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Scheduler{
		store:    store,
		alarms:   alarms,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		minDelay: minDelay,
		tick:     tick,
		stopCh:   make(chan struct{}),
	}
}

// Schedule defers an item: computes the fire time from the label, moves the
// item into the deferred collection and registers the alarm. Scheduling an
// already-deferred item reschedules it. Returns the resolved fire time.
func (s *Scheduler) Schedule(ctx context.Context, itemID string, action domain.DeferralAction, label string) (time.Time, error) {
	if !action.Valid() {
		return time.Time{}, fmt.Errorf("unknown deferral action %q", action)
	}

	now := s.now()
	fireAt := CalculateScheduledTime(label, now)
	if fireAt.Sub(now) < s.minDelay {
		fireAt = now.Add(s.minDelay)
	}

	deferred, err := s.store.GetCollection(ctx, domain.CollectionDeferred)
	if err != nil {
		return time.Time{}, fmt.Errorf("read deferred: %w", err)
	}

	// Reschedule in place when the item is already deferred.
	for i, item := range deferred {
		if item.ID != itemID {
			continue
		}
		if item.Deferral != nil {
			old := AlarmName{Action: item.Deferral.Action, ItemID: itemID}.Encode()
			if _, err := s.alarms.ClearAlarm(ctx, old); err != nil {
				s.log.Warn("failed to clear prior alarm",
					logger.String("alarm", old), logger.Error(err))
			}
		}
		deferred[i].Deferral = &domain.Deferral{Action: action, FireAt: fireAt.UnixMilli()}
		if err := s.store.SetCollection(ctx, domain.CollectionDeferred, deferred); err != nil {
			return time.Time{}, fmt.Errorf("write deferred: %w", err)
		}
		return fireAt, s.registerAlarm(ctx, itemID, action, fireAt)
	}

	// Otherwise pull the item out of whichever collection holds it.
	for _, col := range []domain.Collection{
		domain.CollectionInbox,
		domain.CollectionArchive,
		domain.CollectionTrash,
		domain.CollectionNotes,
	} {
		items, err := s.store.GetCollection(ctx, col)
		if err != nil {
			return time.Time{}, fmt.Errorf("read %s: %w", col, err)
		}

		idx := indexOf(items, itemID)
		if idx == -1 {
			continue
		}

		item := items[idx]
		item.Collection = domain.CollectionDeferred
		item.Deferral = &domain.Deferral{Action: action, FireAt: fireAt.UnixMilli()}

		deferred = append([]domain.Item{item}, deferred...)
		if err := s.store.SetCollection(ctx, domain.CollectionDeferred, deferred); err != nil {
			return time.Time{}, fmt.Errorf("write deferred: %w", err)
		}

		remaining := append(append([]domain.Item{}, items[:idx]...), items[idx+1:]...)
		if err := s.store.SetCollection(ctx, col, remaining); err != nil {
			return time.Time{}, fmt.Errorf("write %s: %w", col, err)
		}

		s.log.Info("item deferred",
			logger.String("item_id", itemID),
			logger.String("action", string(action)),
			logger.Time("fire_at", fireAt),
			logger.String("from", string(col)))

		return fireAt, s.registerAlarm(ctx, itemID, action, fireAt)
	}

	return time.Time{}, fmt.Errorf("schedule %s: %w", itemID, ErrItemNotFound)
}

func (s *Scheduler) registerAlarm(ctx context.Context, itemID string, action domain.DeferralAction, fireAt time.Time) error {
	name := AlarmName{Action: action, ItemID: itemID}.Encode()
	if err := s.alarms.CreateAlarm(ctx, name, fireAt); err != nil {
		s.log.Error("alarm registration failed",
			logger.String("alarm", name), logger.Error(err))
		return fmt.Errorf("register alarm %s: %w", name, err)
	}
	return nil
}

// HandleFire processes a fired alarm: the named item moves from deferred
// back to the inbox, its deferral stripped, and the user is notified. An
// item no longer in deferred, or already back in the inbox, means the fire
// was already resolved by another path; both are successful no-ops.
func (s *Scheduler) HandleFire(ctx context.Context, name string) error {
	parsed, err := ParseAlarmName(name)
	if err != nil {
		s.log.Warn("ignoring malformed alarm name",
			logger.String("alarm", name), logger.Error(err))
		return nil
	}

	deferred, err := s.store.GetCollection(ctx, domain.CollectionDeferred)
	if err != nil {
		return fmt.Errorf("read deferred: %w", err)
	}

	idx := indexOf(deferred, parsed.ItemID)
	if idx == -1 {
		s.log.Debug("fired alarm for item not in deferred, already resolved",
			logger.String("alarm", name))
		return nil
	}

	inbox, err := s.store.GetCollection(ctx, domain.CollectionInbox)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	if indexOf(inbox, parsed.ItemID) != -1 {
		s.log.Debug("fired alarm for item already in inbox, duplicate fire",
			logger.String("alarm", name))
		return nil
	}

	item := deferred[idx]
	item.Deferral = nil
	item.Collection = domain.CollectionInbox

	inbox = append([]domain.Item{item}, inbox...)
	if err := s.store.SetCollection(ctx, domain.CollectionInbox, inbox); err != nil {
		return fmt.Errorf("write inbox: %w", err)
	}

	remaining := append(append([]domain.Item{}, deferred[:idx]...), deferred[idx+1:]...)
	if err := s.store.SetCollection(ctx, domain.CollectionDeferred, remaining); err != nil {
		return fmt.Errorf("write deferred: %w", err)
	}

	s.log.Info("reminder fired",
		logger.String("item_id", item.ID),
		logger.String("action", string(parsed.Action)))

	notification := Notification{
		ID:      name,
		Title:   parsed.Action.Label() + ": " + item.Title,
		Message: "Back in your inbox",
		Sticky:  true,
		Buttons: []string{"Open tabkeep"},
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		// Logged, not retried: the item move already happened.
		s.log.Error("failed to create notification",
			logger.String("item_id", item.ID), logger.Error(err))
	}

	return nil
}

// Restore moves a deferred item back to the inbox by user action, clearing
// its alarm so no stale fire arrives later.
func (s *Scheduler) Restore(ctx context.Context, itemID string) error {
	return s.moveOutOfDeferred(ctx, itemID, domain.CollectionInbox)
}

// Delete moves a deferred item to the trash by user action, clearing its
// alarm.
func (s *Scheduler) Delete(ctx context.Context, itemID string) error {
	return s.moveOutOfDeferred(ctx, itemID, domain.CollectionTrash)
}

func (s *Scheduler) moveOutOfDeferred(ctx context.Context, itemID string, dest domain.Collection) error {
	deferred, err := s.store.GetCollection(ctx, domain.CollectionDeferred)
	if err != nil {
		return fmt.Errorf("read deferred: %w", err)
	}

	idx := indexOf(deferred, itemID)
	if idx == -1 {
		return nil
	}

	item := deferred[idx]
	if item.Deferral != nil {
		name := AlarmName{Action: item.Deferral.Action, ItemID: itemID}.Encode()
		if _, err := s.alarms.ClearAlarm(ctx, name); err != nil {
			s.log.Warn("failed to clear alarm",
				logger.String("alarm", name), logger.Error(err))
		}
	}
	item.Deferral = nil
	item.Collection = dest

	target, err := s.store.GetCollection(ctx, dest)
	if err != nil {
		return fmt.Errorf("read %s: %w", dest, err)
	}
	target = append([]domain.Item{item}, target...)
	if err := s.store.SetCollection(ctx, dest, target); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	remaining := append(append([]domain.Item{}, deferred[:idx]...), deferred[idx+1:]...)
	if err := s.store.SetCollection(ctx, domain.CollectionDeferred, remaining); err != nil {
		return fmt.Errorf("write deferred: %w", err)
	}

	s.log.Info("item left deferred",
		logger.String("item_id", itemID),
		logger.String("to", string(dest)))
	return nil
}

// ListPending returns all registered alarms.
func (s *Scheduler) ListPending(ctx context.Context) ([]domain.Alarm, error) {
	return s.alarms.ListAlarms(ctx)
}

// Start begins the fire loop. An immediate pass picks up alarms that came
// due while the daemon was down.
func (s *Scheduler) Start(ctx context.Context) error {
	s.firePass(ctx)

	ticker := time.NewTicker(s.tick)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.firePass(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the fire loop.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) firePass(ctx context.Context) {
	names, err := s.alarms.ClaimDueAlarms(ctx, s.now())
	if err != nil {
		s.log.Error("failed to claim due alarms", logger.Error(err))
		return
	}

	for _, name := range names {
		if err := s.HandleFire(ctx, name); err != nil {
			s.log.Error("reminder fire failed",
				logger.String("alarm", name), logger.Error(err))
		}
	}
}

func indexOf(items []domain.Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
