package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire format fanned out over Redis pub/sub and down each
// websocket.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// RedisBroker publishes match events onto the Redis channel named after the
// private channel; the relay worker on each instance forwards them to its
// connected sockets.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Envelope{Channel: channel, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := b.rdb.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return nil
}
