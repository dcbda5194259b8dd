package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkeep/tabkeep/internal/domain"
)

func item(id, title, rawURL string, age time.Duration, now time.Time) domain.Item {
	return domain.Item{
		ID:        id,
		Title:     title,
		URL:       rawURL,
		Timestamp: now.Add(-age).UnixMilli(),
	}
}

func TestRankExactTitleBeatsSubstring(t *testing.T) {
	now := time.Now()
	collections := map[domain.Collection][]domain.Item{
		domain.CollectionInbox: {
			item("a", "Grafana dashboards", "https://grafana.example/", time.Hour, now),
			item("b", "Intro to grafana-adjacent tooling", "https://blog.example/post", time.Hour, now),
		},
	}

	got := Rank("grafana", collections, now, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Item.ID)
}

func TestRankMatchesURLHost(t *testing.T) {
	now := time.Now()
	collections := map[domain.Collection][]domain.Item{
		domain.CollectionArchive: {
			item("a", "Weekly digest", "https://news.ycombinator.com/item?id=1", time.Hour, now),
		},
	}

	got := Rank("ycombinator", collections, now, 10)
	require.Len(t, got, 1)
	assert.Equal(t, domain.CollectionArchive, got[0].Collection)
}

func TestRankRequiresEveryFragment(t *testing.T) {
	now := time.Now()
	collections := map[domain.Collection][]domain.Item{
		domain.CollectionInbox: {
			item("a", "Go generics proposal", "https://go.dev/blog", time.Hour, now),
		},
	}

	assert.Len(t, Rank("go proposal", collections, now, 10), 1)
	assert.Empty(t, Rank("go zebra", collections, now, 10))
}

func TestRankRecencyBreaksTies(t *testing.T) {
	now := time.Now()
	collections := map[domain.Collection][]domain.Item{
		domain.CollectionInbox: {
			item("old", "Release notes", "https://example.com/a", 20*24*time.Hour, now),
			item("new", "Release notes", "https://example.com/b", time.Hour, now),
		},
	}

	got := Rank("release", collections, now, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Item.ID)
}

func TestRankEmptyQueryAndLimit(t *testing.T) {
	now := time.Now()
	collections := map[domain.Collection][]domain.Item{
		domain.CollectionInbox: {
			item("a", "one note", "https://example.com/1", time.Hour, now),
			item("b", "another note", "https://example.com/2", time.Hour, now),
			item("c", "third note", "https://example.com/3", time.Hour, now),
		},
	}

	assert.Empty(t, Rank("   ", collections, now, 10))
	assert.Len(t, Rank("note", collections, now, 2), 2)
}
