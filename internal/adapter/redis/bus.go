package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Bus carries change events over one Redis pub/sub channel.
type Bus struct {
	rdb     *goredis.Client
	channel string
}

// NewBus creates a Bus on channel.
func NewBus(rdb *goredis.Client, channel string) *Bus {
	return &Bus{rdb: rdb, channel: channel}
}

// Publish sends payload to every current subscriber.
func (b *Bus) Publish(ctx context.Context, payload string) error {
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Listen subscribes to the channel and hands every message to handle until
// ctx is done or the subscription closes.
func (b *Bus) Listen(ctx context.Context, ready func(), handle func(payload string)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// The first reply confirms the subscription.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	ready()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("subscription closed")
			}
			handle(msg.Payload)
		}
	}
}
