package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"notesync-core/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "analytics"

// Publisher forwards analytics events onto the in-process watermill
// bus. Delivery is fire-and-forget; a failed event must never fail the
// operation that emitted it, so Emit only reports, never blocks flows.
type Publisher struct {
	pubSub *gochannel.GoChannel
}

func NewPublisher(pubSub *gochannel.GoChannel) *Publisher {
	return &Publisher{pubSub: pubSub}
}

// NewBus builds the shared in-process pub/sub channel.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
}

func (p *Publisher) Emit(event events.Event) error {
	if p == nil || p.pubSub == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event":       event.EventType(),
		"payload":     event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal analytics event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(Topic, msg)
}

// Consume subscribes a handler for downstream delivery (telemetry
// uploader, tests).
func (p *Publisher) Consume(ctx context.Context, handler func(eventType string, payload map[string]interface{})) error {
	messages, err := p.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var decoded struct {
				Event   string                 `json:"event"`
				Payload map[string]interface{} `json:"payload"`
			}
			if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
				msg.Ack() // Ack invalid messages to prevent infinite retry
				continue
			}
			handler(decoded.Event, decoded.Payload)
			msg.Ack()
		}
	}()

	return nil
}
