package redis

import (
	"context"
	"encoding/json"

	"github.com/tabkeep/tabkeep/internal/utils"
)

// Change is a store change notification: the logical key that was written
// and its new value. Value is nil when the key was deleted.
type Change struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
}

// publishChange emits a change notification on the pub/sub channel.
// Publication is best effort: a failed publish never fails the write that
// produced it, subscribers converge on the next full reload.
func (s *Store) publishChange(ctx context.Context, key string, value json.RawMessage) {
	payload, err := json.Marshal(Change{Key: key, Value: value})
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, ChannelChanges, payload).Err()
}

// Watch subscribes to the change feed. The returned channel is closed when
// ctx is cancelled. Malformed payloads are skipped.
func (s *Store) Watch(ctx context.Context) (<-chan Change, error) {
	sub := s.client.Subscribe(ctx, ChannelChanges)
	if _, err := sub.Receive(ctx); err != nil {
		utils.Close(sub)
		return nil, err
	}

	out := make(chan Change, 16)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer utils.Close(sub)
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
