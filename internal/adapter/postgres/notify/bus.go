// Package notify carries change events over PostgreSQL LISTEN/NOTIFY.
package notify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/owl-backend/internal/adapter/postgres"
)

// Bus publishes and listens on one notification channel.
type Bus struct {
	pool    *pgxpool.Pool
	channel string
}

// New creates a Bus on channel.
func New(pool *pgxpool.Pool, channel string) *Bus {
	return &Bus{pool: pool, channel: channel}
}

// Publish sends payload to every listener. Inside a transaction the
// notification is delivered on commit.
func (b *Bus) Publish(ctx context.Context, payload string) error {
	q := postgres.QuerierFromCtx(ctx, b.pool)
	if _, err := q.Exec(ctx, "SELECT pg_notify($1, $2)", b.channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", b.channel, postgres.MapError(err, "notification", b.channel))
	}
	return nil
}

// Listen takes a connection out of the pool for the lifetime of the
// subscription and hands every notification payload to handle.
func (b *Bus) Listen(ctx context.Context, ready func(), handle func(payload string)) error {
	pc, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	conn := pc.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", b.channel, err)
	}
	ready()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait on %s: %w", b.channel, err)
		}
		handle(n.Payload)
	}
}
