package bus

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus implements Bus on Redis pub/sub. Every server instance holds one
// subscriber connection; messages fan out to all instances subscribed to the
// channel at publish time. Redis pub/sub gives exactly the contract Bus
// promises: at-most-once, unordered across channels, nothing buffered for
// absent subscribers.
type RedisBus struct {
	rdb *redis.Client

	mu       sync.RWMutex
	handlers map[string][]Handler
	pubsub   *redis.PubSub
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{
		rdb:      rdb,
		handlers: make(map[string][]Handler),
	}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe registers a handler and joins the Redis channel. The first call
// starts the shared receive loop.
func (b *RedisBus) Subscribe(channel string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[channel] = append(b.handlers[channel], h)

	if b.pubsub == nil {
		b.pubsub = b.rdb.Subscribe(context.Background(), channel)
		go b.receive()
		return nil
	}
	return b.pubsub.Subscribe(context.Background(), channel)
}

func (b *RedisBus) receive() {
	ch := b.pubsub.Channel()
	for msg := range ch {
		b.mu.RLock()
		handlers := b.handlers[msg.Channel]
		b.mu.RUnlock()

		for _, h := range handlers {
			h(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return b.pubsub.Close()
	}
	return nil
}
