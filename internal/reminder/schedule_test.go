package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// anchor builds a local time for schedule tests.
func anchor(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

func TestCalculateScheduledTime(t *testing.T) {
	// Wednesday 2026-03-04 11:30 local.
	now := anchor(2026, time.March, 4, 11, 30)

	tests := []struct {
		name  string
		label string
		now   time.Time
		want  time.Time
	}{
		{
			name:  "in 30 minutes",
			label: "In 30 minutes",
			now:   now,
			want:  now.Add(30 * time.Minute),
		},
		{
			name:  "in 1 hour",
			label: "in 1 hour",
			now:   now,
			want:  now.Add(time.Hour),
		},
		{
			name:  "this afternoon before 16:00",
			label: "This afternoon",
			now:   now,
			want:  anchor(2026, time.March, 4, 16, 0),
		},
		{
			name:  "this afternoon after 16:00 rolls to next day",
			label: "this afternoon",
			now:   anchor(2026, time.March, 4, 17, 15),
			want:  anchor(2026, time.March, 5, 16, 0),
		},
		{
			name:  "this evening exactly at 19:00 rolls to next day",
			label: "this evening",
			now:   anchor(2026, time.March, 4, 19, 0),
			want:  anchor(2026, time.March, 5, 19, 0),
		},
		{
			name:  "tomorrow morning",
			label: "Tomorrow morning",
			now:   now,
			want:  anchor(2026, time.March, 5, 9, 0),
		},
		{
			name:  "this weekend from midweek",
			label: "this weekend",
			now:   now, // Wednesday
			want:  anchor(2026, time.March, 7, 10, 0),
		},
		{
			name:  "this weekend on a Saturday rolls a week",
			label: "this weekend",
			now:   anchor(2026, time.March, 7, 8, 0), // Saturday
			want:  anchor(2026, time.March, 14, 10, 0),
		},
		{
			name:  "this weekend on a Sunday picks next Saturday",
			label: "this weekend",
			now:   anchor(2026, time.March, 8, 12, 0), // Sunday
			want:  anchor(2026, time.March, 14, 10, 0),
		},
		{
			name:  "next week from midweek",
			label: "Next week",
			now:   now, // Wednesday
			want:  anchor(2026, time.March, 9, 9, 0),
		},
		{
			name:  "next week on a Monday is strictly future",
			label: "next week",
			now:   anchor(2026, time.March, 2, 9, 0), // Monday 09:00
			want:  anchor(2026, time.March, 9, 9, 0),
		},
		{
			name:  "next week on a Sunday",
			label: "next week",
			now:   anchor(2026, time.March, 8, 20, 0), // Sunday
			want:  anchor(2026, time.March, 9, 9, 0),
		},
		{
			name:  "next month",
			label: "next month",
			now:   now,
			want:  anchor(2026, time.April, 4, 9, 0),
		},
		{
			name:  "unrecognized label defaults to one hour",
			label: "whenever",
			now:   now,
			want:  now.Add(time.Hour),
		},
		{
			name:  "empty label defaults to one hour",
			label: "",
			now:   now,
			want:  now.Add(time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateScheduledTime(tt.label, tt.now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now), "scheduled time must be strictly in the future")
		})
	}
}

func TestNextWeekAlwaysMonday(t *testing.T) {
	// Walk an entire week of anchors; every result must be a future Monday 09:00.
	start := anchor(2026, time.March, 2, 14, 0) // Monday
	for d := 0; d < 7; d++ {
		now := start.AddDate(0, 0, d)
		got := CalculateScheduledTime("next week", now)
		assert.Equal(t, time.Monday, got.Weekday(), "anchor %s", now.Weekday())
		assert.Equal(t, 9, got.Hour())
		assert.True(t, got.After(now))
	}
}
