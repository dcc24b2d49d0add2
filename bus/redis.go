// Package bus implements the cross-instance broadcast substrate on top of
// Redis pub/sub. Delivery is at-most-once per hop with no ordering
// guarantee, which matches what the relay expects.
package bus

import (
	"context"
	"log/slog"

	"chat-relay/errors"

	"github.com/redis/go-redis/v9"
)

type RedisBus struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisBus(client *redis.Client, log *slog.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

// Publish sends one payload to every subscribed instance. Callers bound the
// context; a slow or unreachable Redis fails fast instead of blocking the
// moderation path.
func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

// Subscribe invokes the handler for every payload published on the topic,
// including our own. It blocks until the context is canceled (returns nil)
// or the connection drops (returns an error so the supervisor restarts it).
func (b *RedisBus) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	sub := b.client.Subscribe(ctx, topic)
	defer func() { _ = sub.Close() }()

	b.log.Info("Subscribed to bus topic", "topic", topic)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.ErrBusClosed
			}
			handler([]byte(msg.Payload))
		}
	}
}
