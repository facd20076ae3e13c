package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"notesync-core/internal/pkg/logger"

	"github.com/nats-io/nats.go"
)

const natsSubject = "windows.broadcast"

// NATSBus carries broadcast events between window processes over plain
// NATS pub/sub. Invalidation notices are transient, so no stream
// persistence: a window that was not running simply refetches on its
// next read.
type NATSBus struct {
	nc  *nats.Conn
	log logger.ILogger
}

func NewNATSBus(url string, log logger.ILogger) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSBus{nc: nc, log: log}, nil
}

func (b *NATSBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal broadcast event: %w", err)
	}
	if err := b.nc.Publish(natsSubject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", natsSubject, err)
	}
	return nil
}

func (b *NATSBus) Subscribe(handler func(Event)) (func(), error) {
	sub, err := b.nc.Subscribe(natsSubject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.log.Warn("NATSBus", "Broadcast msg parse error", map[string]interface{}{"error": err.Error()})
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", natsSubject, err)
	}

	return func() { _ = sub.Unsubscribe() }, nil
}

func (b *NATSBus) Close() error {
	if b.nc != nil {
		b.nc.Close()
	}
	return nil
}
