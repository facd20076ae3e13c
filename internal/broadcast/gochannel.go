package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const goChannelTopic = "window_broadcast"

// NewGoChannelTransport builds the shared in-process channel that the
// per-window GoChannelBus endpoints attach to. Used by tests and the
// window simulator, where "windows" live in one process.
func NewGoChannelTransport() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
}

// GoChannelBus is a bus endpoint over a shared watermill gochannel.
type GoChannelBus struct {
	pubSub *gochannel.GoChannel
	ctx    context.Context
	cancel context.CancelFunc
}

func NewGoChannelBus(pubSub *gochannel.GoChannel) *GoChannelBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &GoChannelBus{
		pubSub: pubSub,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *GoChannelBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal broadcast event: %w", err)
	}
	return b.pubSub.Publish(goChannelTopic, message.NewMessage(watermill.NewUUID(), payload))
}

func (b *GoChannelBus) Subscribe(handler func(Event)) (func(), error) {
	subCtx, unsubscribe := context.WithCancel(b.ctx)

	messages, err := b.pubSub.Subscribe(subCtx, goChannelTopic)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	go func() {
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				msg.Ack() // Ack malformed notices, nothing to retry
				continue
			}
			handler(event)
			msg.Ack()
		}
	}()

	return unsubscribe, nil
}

func (b *GoChannelBus) Close() error {
	b.cancel()
	return nil
}
