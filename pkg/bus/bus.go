package bus

import "context"

// Handler processes a single event delivered on a channel.
type Handler func(channel string, payload []byte)

// Bus is the cross-instance fan-out fabric for ephemeral realtime events
// (presence, chat, typing, highlights). Delivery is at-most-once and
// best-effort: no acknowledgment, no retry, no durability. An event
// published while a subscriber is disconnected is lost for that subscriber.
// Anything whose correctness depends on delivery must not ride this bus.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(channel string, h Handler) error
	Close() error
}
