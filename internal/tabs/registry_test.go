package tabs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/sources/rules"
)

type fakeTriager struct {
	captured   []domain.TabSnapshot
	retriaged  []string
	captureErr error
}

func (f *fakeTriager) CaptureClosedTab(_ context.Context, snap domain.TabSnapshot) error {
	f.captured = append(f.captured, snap)
	return f.captureErr
}

func (f *fakeTriager) RetriageNote(_ context.Context, itemID string) error {
	f.retriaged = append(f.retriaged, itemID)
	return nil
}

func newTestRegistry() (*Registry, *fakeTriager) {
	triage := &fakeTriager{}
	return NewRegistry(triage, rules.NewProvider(nil), logger.NewNop()), triage
}

func TestTrackClassification(t *testing.T) {
	reg, _ := newTestRegistry()

	reg.Track(domain.TabSnapshot{TabID: 1, URL: "https://ex.com/a", Title: "A"})
	_, tracked := reg.Snapshot(1)
	assert.True(t, tracked)

	// Navigating the same tab to an editor URL flips it to the editor map.
	reg.Track(domain.TabSnapshot{TabID: 1, URL: "http://localhost:8710/editor?note=n1"})
	_, tracked = reg.Snapshot(1)
	assert.False(t, tracked, "editor tabs must not keep ordinary tracking")
	itemID, isEditor := reg.EditorItem(1)
	require.True(t, isEditor)
	assert.Equal(t, "n1", itemID)

	// Navigating back to an ordinary page clears the editor association.
	reg.Track(domain.TabSnapshot{TabID: 1, URL: "https://ex.com/b"})
	_, isEditor = reg.EditorItem(1)
	assert.False(t, isEditor)
	_, tracked = reg.Snapshot(1)
	assert.True(t, tracked)
}

func TestTrackSkipsInternalURLs(t *testing.T) {
	reg, _ := newTestRegistry()

	reg.Track(domain.TabSnapshot{TabID: 2, URL: "https://ex.com/a"})
	reg.Track(domain.TabSnapshot{TabID: 2, URL: "chrome://newtab"})

	_, tracked := reg.Snapshot(2)
	assert.False(t, tracked, "navigating to an internal page must drop tracking")
}

func TestHandleRemovedCapturesTrackedTab(t *testing.T) {
	reg, triage := newTestRegistry()

	snap := domain.TabSnapshot{TabID: 3, URL: "https://ex.com/a", Title: "A"}
	reg.Track(snap)
	reg.HandleRemoved(context.Background(), 3)

	require.Len(t, triage.captured, 1)
	assert.Equal(t, snap, triage.captured[0])

	_, tracked := reg.Snapshot(3)
	assert.False(t, tracked, "tracking entry must not outlive the tab")
}

func TestHandleRemovedRetriagesEditorTab(t *testing.T) {
	reg, triage := newTestRegistry()

	reg.Track(domain.TabSnapshot{TabID: 4, URL: "http://localhost:8710/editor?note=n7"})
	reg.HandleRemoved(context.Background(), 4)

	assert.Equal(t, []string{"n7"}, triage.retriaged)
	assert.Empty(t, triage.captured)

	_, isEditor := reg.EditorItem(4)
	assert.False(t, isEditor)
}

func TestHandleRemovedUnknownTab(t *testing.T) {
	reg, triage := newTestRegistry()

	reg.HandleRemoved(context.Background(), 99)

	assert.Empty(t, triage.captured)
	assert.Empty(t, triage.retriaged)
}

func TestHandleRemovedDiscardsEntryOnFailure(t *testing.T) {
	reg, triage := newTestRegistry()
	triage.captureErr = errors.New("store down")

	reg.Track(domain.TabSnapshot{TabID: 5, URL: "https://ex.com/a"})
	reg.HandleRemoved(context.Background(), 5)

	_, tracked := reg.Snapshot(5)
	assert.False(t, tracked, "entry is discarded even when capture fails")

	// A second removal for the same id must not act on a stale snapshot.
	reg.HandleRemoved(context.Background(), 5)
	assert.Len(t, triage.captured, 1)
}
