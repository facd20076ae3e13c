package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"notesync-core/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisChannel = "window_broadcast"

// RedisBus carries broadcast events between window processes over a
// Redis pub/sub channel.
type RedisBus struct {
	rdb *redis.Client
	log logger.ILogger

	mu     sync.Mutex
	subs   []*redis.PubSub
	closed bool
}

func NewRedisBus(rdb *redis.Client, log logger.ILogger) *RedisBus {
	return &RedisBus{rdb: rdb, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal broadcast event: %w", err)
	}
	if err := b.rdb.Publish(ctx, redisChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", redisChannel, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(handler func(Event)) (func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("bus closed")
	}
	pubsub := b.rdb.Subscribe(context.Background(), redisChannel)
	b.subs = append(b.subs, pubsub)
	b.mu.Unlock()

	go func() {
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn("RedisBus", "Broadcast msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			handler(event)
		}
	}()

	return func() { pubsub.Close() }, nil
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, pubsub := range b.subs {
		pubsub.Close()
	}
	b.subs = nil
	return nil
}
