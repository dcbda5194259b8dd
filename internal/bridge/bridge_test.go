package bridge

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

func newTestMirror(t *testing.T) (*Mirror, *Queue) {
	t.Helper()
	q := NewQueue()
	m := NewMirror(q, NewHistory(), logger.NewNop())
	t.Cleanup(m.Teardown)
	return m, q
}

func snap(id int, url string, pinned bool) *domain.TabSnapshot {
	return &domain.TabSnapshot{TabID: id, URL: url, Title: "t" + url, Pinned: pinned}
}

func TestMirrorAppliesLifecycleEvents(t *testing.T) {
	m, _ := newTestMirror(t)
	ctx := context.Background()

	m.ApplyEvent(TabEvent{Kind: TabCreated, Tab: snap(1, "https://a.example/", false)})
	m.ApplyEvent(TabEvent{Kind: TabCreated, Tab: snap(2, "https://b.example/", false)})
	m.ApplyEvent(TabEvent{Kind: TabUpdated, Tab: snap(1, "https://a.example/page", false)})

	tabs, err := m.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tabs, 2)

	m.ApplyEvent(TabEvent{Kind: TabRemoved, TabID: 2})
	tabs, err = m.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, "https://a.example/page", tabs[0].URL)
}

func TestMirrorFindTabMatchingNormalizes(t *testing.T) {
	m, _ := newTestMirror(t)
	ctx := context.Background()

	m.ApplyEvent(TabEvent{Kind: TabCreated, Tab: snap(7, "https://shop.example/item?utm_source=mail", false)})

	found, err := m.FindTabMatching(ctx, "https://shop.example/item")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 7, found.TabID)

	missing, err := m.FindTabMatching(ctx, "https://other.example/")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMirrorCloseTabsSkipsPinned(t *testing.T) {
	m, q := newTestMirror(t)
	ctx := context.Background()

	m.ApplyEvent(TabEvent{Kind: TabCreated, Tab: snap(1, "https://a.example/", true)})
	m.ApplyEvent(TabEvent{Kind: TabCreated, Tab: snap(2, "https://b.example/", false)})

	require.NoError(t, m.CloseTabs(ctx, []int{1, 2}))

	cmds := q.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdCloseTabs, cmds[0].Kind)
	assert.Equal(t, []int{2}, cmds[0].TabIDs)

	// Only pinned tabs requested: nothing is queued at all.
	require.NoError(t, m.CloseTabs(ctx, []int{1}))
	assert.Zero(t, q.Len())
}

func TestMirrorSubscribeDisposerIsIdempotent(t *testing.T) {
	m, _ := newTestMirror(t)

	var calls int
	unsubscribe := m.SubscribeTabEvents(func() { calls++ })

	m.ApplyEvent(TabEvent{Kind: TabFocus})
	assert.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe()
	m.ApplyEvent(TabEvent{Kind: TabFocus})
	assert.Equal(t, 1, calls)
}

func TestQueueDrainEmpties(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Command{Kind: CmdOpenPopup})
	q.Enqueue(Command{Kind: CmdCreateTab, URL: "https://a.example/"})

	cmds := q.Drain()
	require.Len(t, cmds, 2)
	assert.Empty(t, q.Drain())
}

func TestQueueCapsPending(t *testing.T) {
	q := NewQueue()
	q.cap = 3
	for i := 0; i < 10; i++ {
		q.Enqueue(Command{Kind: CmdCreateTab, URL: string(rune('a' + i))})
	}
	cmds := q.Drain()
	require.Len(t, cmds, 3)
	assert.Equal(t, "h", cmds[0].URL)
}

func TestHistorySearchMostRecentFirst(t *testing.T) {
	h := NewHistory()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	h.Record("https://go.dev/blog", "The Go Blog", base)
	h.Record("https://go.dev/doc", "Documentation", base.Add(time.Minute))
	h.Record("https://example.com/", "Example", base.Add(2*time.Minute))

	got := h.Search("go.dev", 10)
	require.Len(t, got, 2)
	assert.Equal(t, "https://go.dev/doc", got[0].URL)
	assert.Equal(t, "https://go.dev/blog", got[1].URL)

	// Title matches too, case-insensitively.
	got = h.Search("documentation", 10)
	require.Len(t, got, 1)

	// Empty provider degrades to empty results.
	assert.Empty(t, NewHistory().Search("anything", 10))
}

func TestHistoryRepeatVisitsBumpCount(t *testing.T) {
	h := NewHistory()
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	h.Record("https://go.dev/", "Go", at)
	h.Record("https://go.dev/", "The Go Programming Language", at.Add(time.Hour))

	got := h.Search("go.dev", 1)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].VisitCount)
	assert.Equal(t, "The Go Programming Language", got[0].Title)
	assert.Equal(t, at.Add(time.Hour).UnixMilli(), got[0].LastVisitTime)
}

func TestNotifierClickOpensMainView(t *testing.T) {
	q := NewQueue()
	m := NewMirror(q, nil, logger.NewNop())
	n := NewNotifier(q, m, "http://localhost:8710/app", logger.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, reminder.Notification{ID: "item-1", Title: "Reminder", Sticky: true}))

	cmds := q.Drain()
	require.Len(t, cmds, 1)
	require.NotNil(t, cmds[0].Notification)
	assert.True(t, cmds[0].Notification.Sticky)

	n.HandleClick(ctx, "item-1")
	cmds = q.Drain()
	require.Len(t, cmds, 2)
	assert.Equal(t, CmdCreateTab, cmds[0].Kind)
	assert.Equal(t, "http://localhost:8710/app", cmds[0].URL)
	assert.Equal(t, CmdClearNotification, cmds[1].Kind)
	assert.Equal(t, "item-1", cmds[1].NotificationID)

	// A second click on the same id is a no-op.
	n.HandleClick(ctx, "item-1")
	assert.Zero(t, q.Len())
}
