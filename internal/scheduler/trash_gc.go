package scheduler

import (
	"context"
	"time"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/reminder"
)

const (
	// DefaultTrashThreshold is the age after which trashed items are purged
	DefaultTrashThreshold = 30 * 24 * time.Hour
)

// trashStore is the collection access the collector needs.
type trashStore interface {
	GetCollection(ctx context.Context, col domain.Collection) ([]domain.Item, error)
	SetCollection(ctx context.Context, col domain.Collection, items []domain.Item) error
}

// alarmRegistry is the alarm access the collector needs.
type alarmRegistry interface {
	ListAlarms(ctx context.Context) ([]domain.Alarm, error)
	ClearAlarm(ctx context.Context, name string) (bool, error)
}

// TrashCollector handles cleanup of old trashed items, plus registered
// alarms whose deferred item no longer exists.
type TrashCollector struct {
	store     trashStore
	alarms    alarmRegistry
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewTrashCollector creates a new trash collector.
func NewTrashCollector(
	store trashStore,
	alarms alarmRegistry,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *TrashCollector {
	if threshold == 0 {
		threshold = DefaultTrashThreshold
	}

	return &TrashCollector{
		store:     store,
		alarms:    alarms,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic collection process.
func (tc *TrashCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := tc.Collect(ctx); err != nil {
		tc.logger.Warn("initial trash collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(tc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tc.Collect(ctx); err != nil {
					tc.logger.Error("trash collection failed",
						logger.Error(err))
				}
			case <-tc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector.
func (tc *TrashCollector) Stop() {
	close(tc.stopCh)
}

// Collect purges trashed items older than the threshold and clears alarms
// that no longer map to a deferred item.
func (tc *TrashCollector) Collect(ctx context.Context) error {
	now := time.Now()

	trashed, err := tc.purgeTrash(ctx, now)
	if err != nil {
		return err
	}

	orphaned := tc.clearOrphanAlarms(ctx)

	if trashed > 0 || orphaned > 0 {
		tc.logger.Info("trash collection completed",
			logger.Int("items_purged", trashed),
			logger.Int("alarms_cleared", orphaned))
	} else {
		tc.logger.Debug("nothing to collect")
	}

	return nil
}

// purgeTrash drops trashed items older than the threshold.
func (tc *TrashCollector) purgeTrash(ctx context.Context, now time.Time) (int, error) {
	items, err := tc.store.GetCollection(ctx, domain.CollectionTrash)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-tc.threshold).UnixMilli()
	kept := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.Timestamp >= cutoff {
			kept = append(kept, item)
		}
	}

	purged := len(items) - len(kept)
	if purged == 0 {
		return 0, nil
	}

	if err := tc.store.SetCollection(ctx, domain.CollectionTrash, kept); err != nil {
		return 0, err
	}
	return purged, nil
}

// clearOrphanAlarms removes alarms whose item is no longer deferred. Errors
// here are logged and skipped so a flaky read never blocks trash purging.
func (tc *TrashCollector) clearOrphanAlarms(ctx context.Context) int {
	alarms, err := tc.alarms.ListAlarms(ctx)
	if err != nil {
		tc.logger.Warn("list alarms failed", logger.Error(err))
		return 0
	}
	if len(alarms) == 0 {
		return 0
	}

	deferred, err := tc.store.GetCollection(ctx, domain.CollectionDeferred)
	if err != nil {
		tc.logger.Warn("read deferred collection failed", logger.Error(err))
		return 0
	}
	present := make(map[string]struct{}, len(deferred))
	for _, item := range deferred {
		present[item.ID] = struct{}{}
	}

	cleared := 0
	for _, alarm := range alarms {
		name, err := reminder.ParseAlarmName(alarm.Name)
		if err != nil {
			// Unparseable registrations are junk as well.
			if ok, _ := tc.alarms.ClearAlarm(ctx, alarm.Name); ok {
				cleared++
			}
			continue
		}
		if _, ok := present[name.ItemID]; ok {
			continue
		}
		if ok, err := tc.alarms.ClearAlarm(ctx, alarm.Name); err != nil {
			tc.logger.Warn("clear orphan alarm failed",
				logger.String("alarm", alarm.Name), logger.Error(err))
		} else if ok {
			cleared++
		}
	}
	return cleared
}
