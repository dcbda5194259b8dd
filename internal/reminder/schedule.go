package reminder

import (
	"strings"
	"time"
)

// CalculateScheduledTime maps a human-readable interval label to an absolute
// future timestamp anchored at now. The vocabulary is closed; unrecognized
// labels default to a one hour offset rather than failing.
func CalculateScheduledTime(label string, now time.Time) time.Time {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "in 30 minutes":
		return now.Add(30 * time.Minute)
	case "in 1 hour", "in an hour":
		return now.Add(time.Hour)
	case "in 3 hours":
		return now.Add(3 * time.Hour)
	case "this afternoon":
		return nextDailyHour(now, 16)
	case "this evening":
		return nextDailyHour(now, 19)
	case "tomorrow morning":
		return atHour(now.AddDate(0, 0, 1), 9)
	case "tomorrow evening":
		return atHour(now.AddDate(0, 0, 1), 19)
	case "this weekend":
		return upcomingSaturday(now)
	case "next week":
		return nextMonday(now)
	case "next month":
		return atHour(now.AddDate(0, 1, 0), 9)
	default:
		return now.Add(time.Hour)
	}
}

// atHour returns t's date at hour:00 local time.
func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// nextDailyHour returns today at hour:00, rolling to tomorrow if that
// moment has already passed.
func nextDailyHour(now time.Time, hour int) time.Time {
	target := atHour(now, hour)
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// upcomingSaturday resolves to the coming Saturday at 10:00. If today is
// already Saturday, it rolls a full week forward.
func upcomingSaturday(now time.Time) time.Time {
	days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return atHour(now.AddDate(0, 0, days), 10)
}

// nextMonday resolves to the following Monday at 09:00, always strictly
// after today, even when today is a Monday.
func nextMonday(now time.Time) time.Time {
	days := (8 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return atHour(now.AddDate(0, 0, days), 9)
}
