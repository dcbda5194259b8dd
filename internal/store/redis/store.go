package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeep/internal/domain"
)

// Store is the persistent collection store. Each collection is a single
// whole-value JSON array, so a write replaces the collection atomically at
// the Redis API level. There is no multi-key atomicity; callers are expected
// to be idempotent across interleaved operations.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis-backed collection store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// GetCollection retrieves a whole collection. A missing key yields an empty
// list, never an error.
func (s *Store) GetCollection(ctx context.Context, col domain.Collection) ([]domain.Item, error) {
	data, err := s.client.Get(ctx, CollectionKey(col)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Item{}, nil
		}
		return nil, fmt.Errorf("failed to get collection %s: %w", col, err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collection %s: %w", col, err)
	}
	if items == nil {
		items = []domain.Item{}
	}

	return items, nil
}

// GetCollections retrieves several collections in one round trip.
func (s *Store) GetCollections(ctx context.Context, cols ...domain.Collection) (map[domain.Collection][]domain.Item, error) {
	keys := make([]string, len(cols))
	for i, col := range cols {
		keys[i] = CollectionKey(col)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get collections: %w", err)
	}

	out := make(map[domain.Collection][]domain.Item, len(cols))
	for i, col := range cols {
		items := []domain.Item{}
		if raw, ok := values[i].(string); ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal collection %s: %w", col, err)
			}
		}
		out[col] = items
	}

	return out, nil
}

// SetCollection replaces a whole collection and publishes a change
// notification for its logical key.
func (s *Store) SetCollection(ctx context.Context, col domain.Collection, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", col, err)
	}

	if err := s.client.Set(ctx, CollectionKey(col), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save collection %s: %w", col, err)
	}

	s.publishChange(ctx, string(col), data)
	return nil
}

// SetCollectionsMany replaces several collections in one pipeline.
// Change notifications are published per key after the pipeline commits.
func (s *Store) SetCollectionsMany(ctx context.Context, collections map[domain.Collection][]domain.Item) error {
	payloads := make(map[domain.Collection][]byte, len(collections))
	pipe := s.client.Pipeline()

	for col, items := range collections {
		if items == nil {
			items = []domain.Item{}
		}
		data, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to marshal collection %s: %w", col, err)
		}
		payloads[col] = data
		pipe.Set(ctx, CollectionKey(col), data, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save collections: %w", err)
	}

	for col, data := range payloads {
		s.publishChange(ctx, string(col), data)
	}

	return nil
}
