// Package search ranks triaged items against a free-text query. Scoring
// favors exact and prefix matches on title words and URL host fragments,
// with a recency bonus so fresher captures surface first.
package search

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tabkeep/tabkeep/internal/domain"
)

const (
	scoreExactMatch     = 100.0
	scorePrefixMatch    = 75.0
	scoreSubstringMatch = 50.0
	scoreFuzzyMatch     = 25.0

	// Earlier fragments matter more
	scorePositionBonus = 10.0

	// Recency contributes but never dominates lexical relevance
	scoreRecencyWeight = 0.1
)

// Match is one ranked result.
type Match struct {
	Item       domain.Item       `json:"item"`
	Collection domain.Collection `json:"collection"`
	Score      float64           `json:"score"`
}

// Rank scores every item in the given collections against query and returns
// matches best-first. A zero lexical score excludes the item entirely.
func Rank(query string, collections map[domain.Collection][]domain.Item, now time.Time, limit int) []Match {
	fragments := splitFragments(query)
	if len(fragments) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 20
	}

	var matches []Match
	for col, items := range collections {
		for _, item := range items {
			lexical := scoreItem(fragments, item)
			if lexical == 0.0 {
				continue
			}
			matches = append(matches, Match{
				Item:       item,
				Collection: col,
				Score:      lexical + recencyScore(item, now),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// scoreItem takes, per query fragment, the best score across the item's
// title words and host fragments.
func scoreItem(fragments []string, item domain.Item) float64 {
	targets := itemFragments(item)
	if len(targets) == 0 {
		return 0.0
	}

	var total float64
	for _, qFrag := range fragments {
		best := 0.0
		for i, target := range targets {
			if score := scoreFragment(qFrag, target, i); score > best {
				best = score
			}
		}
		// Every query fragment must land somewhere
		if best == 0.0 {
			return 0.0
		}
		total += best
	}
	return total
}

// itemFragments decomposes an item into matchable fragments: title words
// first, then the URL host split on dots, then path segments.
func itemFragments(item domain.Item) []string {
	var out []string
	for _, w := range splitFragments(item.Title) {
		out = append(out, w)
	}
	if u, err := url.Parse(item.URL); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		for _, part := range strings.Split(host, ".") {
			if part != "" {
				out = append(out, part)
			}
		}
		for _, part := range strings.Split(strings.ToLower(u.Path), "/") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func splitFragments(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, `.,;:"'()[]`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// scoreFragment scores one query fragment against one target fragment.
func scoreFragment(queryFrag, target string, position int) float64 {
	if queryFrag == "" || target == "" {
		return 0.0
	}

	if queryFrag == target {
		return scoreExactMatch + positionBonus(position)
	}
	if strings.HasPrefix(target, queryFrag) {
		return scorePrefixMatch + positionBonus(position)
	}
	if idx := strings.Index(target, queryFrag); idx >= 0 {
		// Earlier substring matches get higher score
		bonus := scorePositionBonus * (1.0 - float64(idx)/float64(len(target)))
		return scoreSubstringMatch + bonus
	}

	if similarity := similarity(queryFrag, target); similarity > 0.5 {
		return scoreFuzzyMatch * similarity
	}
	return 0.0
}

// positionBonus gives bonus for earlier positions.
func positionBonus(position int) float64 {
	return scorePositionBonus * math.Exp(-float64(position)*0.3)
}

// similarity is the ratio of query characters present in the target.
func similarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}
	matches := 0
	for _, c := range s1 {
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}
	return float64(matches) / float64(len(s1))
}

// recencyScore rewards fresh captures on a log scale, mirroring how usage
// counters weigh into ranking elsewhere without ever beating relevance.
func recencyScore(item domain.Item, now time.Time) float64 {
	if item.Timestamp <= 0 {
		return 0.0
	}
	age := now.Sub(time.UnixMilli(item.Timestamp))
	if age < 0 {
		age = 0
	}
	days := age.Hours() / 24
	return math.Max(0, (30-days)) * scoreRecencyWeight
}
