package changefeed

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/heartmarshall/owl-backend/internal/config"
	"github.com/heartmarshall/owl-backend/internal/domain"
)

// Bus carries encoded events between processes. Listen blocks until ctx is
// done or the connection fails; it calls ready once the subscription is live
// and handle for every payload received after that.
type Bus interface {
	Publish(ctx context.Context, payload string) error
	Listen(ctx context.Context, ready func(), handle func(payload string)) error
}

type listReloader interface {
	Name() domain.WordList
	Reload(ctx context.Context) error
}

type wordInvalidator interface {
	Invalidate(word string)
	InvalidateAll()
}

// Feed publishes local changes to the bus and applies remote ones.
type Feed struct {
	bus    Bus
	log    *slog.Logger
	cfg    config.SyncConfig
	origin string

	lists map[domain.WordList]listReloader
	words wordInvalidator
}

// New creates a feed on bus. Register receivers with Watch and SetWords
// before calling Run. Zero durations in cfg select the defaults.
func New(bus Bus, logger *slog.Logger, cfg config.SyncConfig) *Feed {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}
	if cfg.MaxRetryInterval < cfg.RetryInterval {
		cfg.MaxRetryInterval = 30 * cfg.RetryInterval
	}
	return &Feed{
		bus:    bus,
		log:    logger.With("service", "changefeed"),
		cfg:    cfg,
		origin: uuid.NewString(),
		lists:  make(map[domain.WordList]listReloader),
	}
}

// Watch reloads l whenever another process changes its list.
func (f *Feed) Watch(l listReloader) {
	f.lists[l.Name()] = l
}

// SetWords drops entries from w's memory layer when another process stores,
// forgets or purges words.
func (f *Feed) SetWords(w wordInvalidator) {
	f.words = w
}

// ListChanged announces a mutation of list.
func (f *Feed) ListChanged(ctx context.Context, list domain.WordList) {
	f.publish(ctx, Event{Kind: KindList, List: list.String()})
}

// WordChanged announces that word was stored or forgotten.
func (f *Feed) WordChanged(ctx context.Context, word string) {
	f.publish(ctx, Event{Kind: KindWord, Word: word})
}

// CacheCleared announces a purge.
func (f *Feed) CacheCleared(ctx context.Context) {
	f.publish(ctx, Event{Kind: KindPurge})
}

// publish is best effort. The change is already stored, so a failure only
// delays other processes until their next resync.
func (f *Feed) publish(ctx context.Context, e Event) {
	e.Origin = f.origin
	payload, err := e.Encode()
	if err != nil {
		f.log.ErrorContext(ctx, "encode change", slog.String("error", err.Error()))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.PublishTimeout)
	defer cancel()
	if err := f.bus.Publish(pubCtx, payload); err != nil {
		f.log.WarnContext(ctx, "publish change failed",
			slog.String("kind", string(e.Kind)),
			slog.String("error", err.Error()),
		)
	}
}

// Run applies changes announced by other processes until ctx is done. Every
// time the subscription goes live, including after a reconnect, all watched
// lists are reloaded and the word memory layer is emptied, because events
// sent while disconnected are lost.
func (f *Feed) Run(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.RetryInterval
	b.MaxInterval = f.cfg.MaxRetryInterval
	b.MaxElapsedTime = 0

	for {
		err := f.bus.Listen(ctx,
			func() {
				b.Reset()
				f.resync(ctx)
			},
			func(payload string) { f.apply(ctx, payload) },
		)
		if ctx.Err() != nil {
			return
		}

		wait := b.NextBackOff()
		f.log.WarnContext(ctx, "change feed disconnected",
			slog.Duration("retry_in", wait),
			slog.Any("error", err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (f *Feed) resync(ctx context.Context) {
	for _, l := range f.lists {
		f.reload(ctx, l)
	}
	if f.words != nil {
		f.words.InvalidateAll()
	}
	f.log.DebugContext(ctx, "change feed live", slog.Int("lists", len(f.lists)))
}

func (f *Feed) apply(ctx context.Context, payload string) {
	e, err := Decode(payload)
	if err != nil {
		f.log.WarnContext(ctx, "skip change", slog.String("error", err.Error()))
		return
	}
	if e.Origin == f.origin {
		return
	}

	switch e.Kind {
	case KindList:
		if l, ok := f.lists[domain.WordList(e.List)]; ok {
			f.reload(ctx, l)
		}
	case KindWord:
		if f.words != nil {
			f.words.Invalidate(e.Word)
		}
	case KindPurge:
		if f.words != nil {
			f.words.InvalidateAll()
		}
	}
}

func (f *Feed) reload(ctx context.Context, l listReloader) {
	if err := l.Reload(ctx); err != nil {
		f.log.WarnContext(ctx, "reload list failed",
			slog.String("list", l.Name().String()),
			slog.String("error", err.Error()),
		)
	}
}
