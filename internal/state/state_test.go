package state

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	redisstore "github.com/tabkeep/tabkeep/internal/store/redis"
)

type fakeLoader struct {
	collections map[domain.Collection][]domain.Item
	prefs       domain.Preferences
	loads       int
}

func (f *fakeLoader) GetCollections(_ context.Context, cols ...domain.Collection) (map[domain.Collection][]domain.Item, error) {
	f.loads++
	out := make(map[domain.Collection][]domain.Item, len(cols))
	for _, col := range cols {
		out[col] = append([]domain.Item{}, f.collections[col]...)
	}
	return out, nil
}

func (f *fakeLoader) GetPreferences(_ context.Context) (domain.Preferences, error) {
	return f.prefs, nil
}

func newTestStore() (*Store, *fakeLoader) {
	loader := &fakeLoader{
		collections: map[domain.Collection][]domain.Item{
			domain.CollectionInbox:   {{ID: "i1", Title: "A"}},
			domain.CollectionArchive: {{ID: "a1", Title: "B"}},
		},
		prefs: domain.DefaultPreferences(),
	}
	return New(loader, logger.NewNop()), loader
}

func itemsJSON(t *testing.T, items []domain.Item) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	return data
}

func TestApplyWithoutSnapshotDoesFullReload(t *testing.T) {
	store, loader := newTestStore()

	store.Apply(context.Background(), redisstore.Change{Key: "inbox"})

	assert.Equal(t, 1, loader.loads)
	snapshot, ok := store.Current()
	require.True(t, ok)
	require.Len(t, snapshot.Inbox, 1)
	assert.Equal(t, "i1", snapshot.Inbox[0].ID)
}

func TestApplyGranularUpdate(t *testing.T) {
	store, loader := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.RefreshFromStorage(ctx))

	before, _ := store.Current()

	update := []domain.Item{{ID: "i2", Title: "new"}}
	store.Apply(ctx, redisstore.Change{Key: "inbox", Value: itemsJSON(t, update)})

	after, _ := store.Current()
	require.Len(t, after.Inbox, 1)
	assert.Equal(t, "i2", after.Inbox[0].ID)

	// Unrelated properties keep reference identity: no spurious re-renders.
	require.NotEmpty(t, before.Archive)
	assert.Same(t, &before.Archive[0], &after.Archive[0])

	// No second full reload happened.
	assert.Equal(t, 1, loader.loads)
}

func TestApplyDeletedKeyUsesDefaults(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.RefreshFromStorage(ctx))

	store.Apply(ctx,
		redisstore.Change{Key: "inbox", Value: nil},
		redisstore.Change{Key: "userPreferences", Value: nil},
	)

	snapshot, _ := store.Current()
	assert.NotNil(t, snapshot.Inbox)
	assert.Empty(t, snapshot.Inbox)
	assert.Equal(t, domain.DefaultPreferences(), snapshot.Preferences)
}

func TestApplyIgnoresUnmappedKeys(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.RefreshFromStorage(ctx))

	notified := 0
	defer store.Subscribe(func(Snapshot) { notified++ })()

	store.Apply(ctx, redisstore.Change{Key: "suggestion:https://ex.com"})

	assert.Zero(t, notified, "unmapped keys must not notify subscribers")
}

func TestSubscribersNotifiedSynchronously(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.RefreshFromStorage(ctx))

	var got []Snapshot
	unsubscribe := store.Subscribe(func(s Snapshot) { got = append(got, s) })

	store.Apply(ctx, redisstore.Change{Key: "inbox", Value: itemsJSON(t, []domain.Item{{ID: "x"}})})
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Inbox[0].ID)

	unsubscribe()
	store.Apply(ctx, redisstore.Change{Key: "inbox", Value: itemsJSON(t, nil)})
	assert.Len(t, got, 1, "unsubscribed listener must not be called")

	// Double-unsubscribe is harmless.
	unsubscribe()
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.RefreshFromStorage(ctx))

	defer store.Subscribe(func(Snapshot) { panic("listener bug") })()
	calls := 0
	defer store.Subscribe(func(Snapshot) { calls++ })()

	store.Apply(ctx, redisstore.Change{Key: "inbox", Value: itemsJSON(t, []domain.Item{{ID: "x"}})})

	assert.Equal(t, 1, calls)
}

func TestRefreshFromStorageNotifies(t *testing.T) {
	store, loader := newTestStore()

	calls := 0
	defer store.Subscribe(func(Snapshot) { calls++ })()

	require.NoError(t, store.RefreshFromStorage(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, loader.loads)

	// Manual recovery path re-notifies.
	require.NoError(t, store.RefreshFromStorage(context.Background()))
	assert.Equal(t, 2, calls)
}
