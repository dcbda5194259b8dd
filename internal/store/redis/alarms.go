package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeep/internal/domain"
)

// CreateAlarm registers a named alarm at fireAt. Re-creating an existing
// name reschedules it. Non-positive delays are rejected.
func (s *Store) CreateAlarm(ctx context.Context, name string, fireAt time.Time) error {
	if !fireAt.After(time.Now()) {
		return fmt.Errorf("alarm %s: fire time must be in the future", name)
	}
	err := s.client.ZAdd(ctx, KeyAlarms, redis.Z{
		Score:  float64(fireAt.UnixMilli()),
		Member: name,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to create alarm %s: %w", name, err)
	}
	return nil
}

// ClearAlarm removes an alarm by name, reporting whether it existed.
func (s *Store) ClearAlarm(ctx context.Context, name string) (bool, error) {
	removed, err := s.client.ZRem(ctx, KeyAlarms, name).Result()
	if err != nil {
		return false, fmt.Errorf("failed to clear alarm %s: %w", name, err)
	}
	return removed > 0, nil
}

// ListAlarms returns all pending alarms with their scheduled fire times.
func (s *Store) ListAlarms(ctx context.Context) ([]domain.Alarm, error) {
	entries, err := s.client.ZRangeWithScores(ctx, KeyAlarms, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}

	alarms := make([]domain.Alarm, 0, len(entries))
	for _, entry := range entries {
		name, ok := entry.Member.(string)
		if !ok {
			continue
		}
		alarms = append(alarms, domain.Alarm{
			Name:          name,
			ScheduledTime: time.UnixMilli(int64(entry.Score)),
		})
	}

	return alarms, nil
}

// ClaimDueAlarms returns the names of alarms due at or before now, removing
// each from the registry as it is claimed. The ZREM result gates the claim,
// so a due alarm is handed to exactly one caller even with concurrent
// pollers.
func (s *Store) ClaimDueAlarms(ctx context.Context, now time.Time) ([]string, error) {
	maxScore := strconv.FormatInt(now.UnixMilli(), 10)
	names, err := s.client.ZRangeByScore(ctx, KeyAlarms, &redis.ZRangeBy{
		Min: "-inf",
		Max: maxScore,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query due alarms: %w", err)
	}

	claimed := make([]string, 0, len(names))
	for _, name := range names {
		removed, err := s.client.ZRem(ctx, KeyAlarms, name).Result()
		if err != nil {
			return claimed, fmt.Errorf("failed to claim alarm %s: %w", name, err)
		}
		if removed > 0 {
			claimed = append(claimed, name)
		}
	}

	return claimed, nil
}
