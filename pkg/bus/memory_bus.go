package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// MemoryBus implements Bus on Watermill's GoChannel pub/sub. Used when no
// Redis is configured (single-instance deployments) and in tests.
type MemoryBus struct {
	pubsub *gochannel.GoChannel
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NopLogger{},
		),
	}
}

func (b *MemoryBus) Publish(ctx context.Context, channel string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.pubsub.Publish(channel, msg)
}

func (b *MemoryBus) Subscribe(channel string, h Handler) error {
	msgs, err := b.pubsub.Subscribe(context.Background(), channel)
	if err != nil {
		return err
	}
	go func() {
		for msg := range msgs {
			h(channel, msg.Payload)
			msg.Ack()
		}
	}()
	return nil
}

func (b *MemoryBus) Close() error {
	return b.pubsub.Close()
}
