package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/reminder"
)

type fakeTrashStore struct {
	collections map[domain.Collection][]domain.Item
	writes      int
}

func (f *fakeTrashStore) GetCollection(_ context.Context, col domain.Collection) ([]domain.Item, error) {
	return f.collections[col], nil
}

func (f *fakeTrashStore) SetCollection(_ context.Context, col domain.Collection, items []domain.Item) error {
	f.writes++
	f.collections[col] = items
	return nil
}

type fakeAlarmRegistry struct {
	alarms map[string]time.Time
}

func (f *fakeAlarmRegistry) ListAlarms(_ context.Context) ([]domain.Alarm, error) {
	out := make([]domain.Alarm, 0, len(f.alarms))
	for name, at := range f.alarms {
		out = append(out, domain.Alarm{Name: name, ScheduledTime: at})
	}
	return out, nil
}

func (f *fakeAlarmRegistry) ClearAlarm(_ context.Context, name string) (bool, error) {
	if _, ok := f.alarms[name]; !ok {
		return false, nil
	}
	delete(f.alarms, name)
	return true, nil
}

func trashedItem(id string, age time.Duration) domain.Item {
	return domain.Item{
		ID:         id,
		URL:        "https://example.com/" + id,
		Timestamp:  time.Now().Add(-age).UnixMilli(),
		Collection: domain.CollectionTrash,
	}
}

func TestTrashCollectorPurgesOldItems(t *testing.T) {
	store := &fakeTrashStore{collections: map[domain.Collection][]domain.Item{
		domain.CollectionTrash: {
			trashedItem("fresh", 10*24*time.Hour),
			trashedItem("stale", 35*24*time.Hour),
		},
	}}
	tc := NewTrashCollector(store, &fakeAlarmRegistry{}, logger.NewNop(), 24*time.Hour, 30*24*time.Hour)

	require.NoError(t, tc.Collect(context.Background()))

	trash := store.collections[domain.CollectionTrash]
	require.Len(t, trash, 1)
	assert.Equal(t, "fresh", trash[0].ID)
}

func TestTrashCollectorSkipsWriteWhenNothingExpired(t *testing.T) {
	store := &fakeTrashStore{collections: map[domain.Collection][]domain.Item{
		domain.CollectionTrash: {trashedItem("fresh", time.Hour)},
	}}
	tc := NewTrashCollector(store, &fakeAlarmRegistry{}, logger.NewNop(), 24*time.Hour, 0)

	require.NoError(t, tc.Collect(context.Background()))
	assert.Zero(t, store.writes)
}

func TestTrashCollectorClearsOrphanAlarms(t *testing.T) {
	deferredName := reminder.AlarmName{Action: domain.ActionRemindMe, ItemID: "kept"}.Encode()
	orphanName := reminder.AlarmName{Action: domain.ActionFollowUp, ItemID: "gone"}.Encode()

	store := &fakeTrashStore{collections: map[domain.Collection][]domain.Item{
		domain.CollectionDeferred: {{ID: "kept", Collection: domain.CollectionDeferred}},
	}}
	registry := &fakeAlarmRegistry{alarms: map[string]time.Time{
		deferredName: time.Now().Add(time.Hour),
		orphanName:   time.Now().Add(time.Hour),
		"garbage":    time.Now().Add(time.Hour),
	}}
	tc := NewTrashCollector(store, registry, logger.NewNop(), 24*time.Hour, 0)

	require.NoError(t, tc.Collect(context.Background()))

	assert.Contains(t, registry.alarms, deferredName)
	assert.NotContains(t, registry.alarms, orphanName)
	assert.NotContains(t, registry.alarms, "garbage")
}
