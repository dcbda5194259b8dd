package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeep/internal/domain"
)

// DefaultSuggestionTTL is the default TTL for cached tag suggestions
const DefaultSuggestionTTL = 24 * time.Hour

// GetPreferences retrieves the user preferences. A missing key yields the
// default preferences object, never an error.
func (s *Store) GetPreferences(ctx context.Context) (domain.Preferences, error) {
	data, err := s.client.Get(ctx, KeyPreferences).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DefaultPreferences(), nil
		}
		return domain.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	return prefs, nil
}

// SetPreferences stores the user preferences and publishes a change
// notification.
func (s *Store) SetPreferences(ctx context.Context, prefs domain.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := s.client.Set(ctx, KeyPreferences, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	s.publishChange(ctx, PreferencesChangeKey, data)
	return nil
}

// CacheSuggestions stores tag suggestions for a normalized URL with a TTL.
func (s *Store) CacheSuggestions(ctx context.Context, normalizedURL string, tags []string, ttl time.Duration) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	if err := s.client.Set(ctx, SuggestionKey(normalizedURL), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache suggestions: %w", err)
	}
	return nil
}

// GetCachedSuggestions retrieves cached tag suggestions. A miss yields nil.
func (s *Store) GetCachedSuggestions(ctx context.Context, normalizedURL string) ([]string, error) {
	data, err := s.client.Get(ctx, SuggestionKey(normalizedURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached suggestions: %w", err)
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
	}
	return tags, nil
}
