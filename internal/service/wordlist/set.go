// Package wordlist keeps the persisted word sets (history, favourites) and
// publishes their snapshots to subscribers.
package wordlist

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/observability/metrics"
)

// Store is the namespaced key-value store a set is persisted in.
type Store interface {
	Set(ctx context.Context, store, key, value string) error
	Delete(ctx context.Context, store, key string) error
	All(ctx context.Context, store string) (map[string]string, error)
	Clear(ctx context.Context, store string) error
}

type changeNotifier interface {
	ListChanged(ctx context.Context, list domain.WordList)
}

// Mutation operation labels.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpClear  = "clear"
)

// ObservableSet is a persisted set of normalized words. Every mutation is
// written to the store before memory is updated and subscribers are notified;
// mutations of one set are applied one at a time in the order they acquire
// the set.
//
// Other processes may share the store. Add and Remove always write through,
// so they take effect even when memory is stale, and Reload pulls in what
// other processes wrote.
type ObservableSet struct {
	name    domain.WordList
	store   Store
	log     *slog.Logger
	metrics *metrics.Metrics
	peers   changeNotifier

	mu      sync.Mutex
	members map[string]struct{}
	subs    map[chan []string]struct{}
}

// Open loads the set name from store.
func Open(ctx context.Context, name domain.WordList, store Store, logger *slog.Logger) (*ObservableSet, error) {
	if !name.IsValid() {
		return nil, domain.NewValidationError("list", "unknown list "+name.String())
	}

	stored, err := store.All(ctx, name.String())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	members := membersOf(stored)

	s := &ObservableSet{
		name:    name,
		store:   store,
		log:     logger.With("service", "wordlist", "list", name.String()),
		members: members,
		subs:    make(map[chan []string]struct{}),
	}
	s.log.DebugContext(ctx, "word list loaded", slog.Int("size", len(members)))
	return s, nil
}

// SetMetrics injects the optional metrics sink.
func (s *ObservableSet) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetNotifier injects the optional sink that tells other processes sharing
// the store about successful mutations.
func (s *ObservableSet) SetNotifier(n changeNotifier) {
	s.peers = n
}

// Name returns the list name.
func (s *ObservableSet) Name() domain.WordList { return s.name }

// Add inserts word. Adding a present word writes it again but does not
// notify subscribers.
func (s *ObservableSet) Add(ctx context.Context, word string) error {
	w, err := normalize(word)
	if err != nil {
		return err
	}

	err = s.apply(ctx, OpAdd,
		func() error { return s.store.Set(ctx, s.name.String(), w, w) },
		func() bool {
			if _, ok := s.members[w]; ok {
				return false
			}
			s.members[w] = struct{}{}
			return true
		},
	)
	if err != nil {
		return fmt.Errorf("%s add %q: %w", s.name, w, err)
	}
	return nil
}

// Remove deletes word. Removing an absent word still deletes it from the
// store but does not notify subscribers.
func (s *ObservableSet) Remove(ctx context.Context, word string) error {
	w, err := normalize(word)
	if err != nil {
		return err
	}

	err = s.apply(ctx, OpRemove,
		func() error { return s.store.Delete(ctx, s.name.String(), w) },
		func() bool {
			if _, ok := s.members[w]; !ok {
				return false
			}
			delete(s.members, w)
			return true
		},
	)
	if err != nil {
		return fmt.Errorf("%s remove %q: %w", s.name, w, err)
	}
	return nil
}

// RemoveAll empties the set.
func (s *ObservableSet) RemoveAll(ctx context.Context) error {
	err := s.apply(ctx, OpClear,
		func() error { return s.store.Clear(ctx, s.name.String()) },
		func() bool {
			clear(s.members)
			return true
		},
	)
	if err != nil {
		return fmt.Errorf("%s clear: %w", s.name, err)
	}
	return nil
}

// Reload replaces the members with the store's contents and notifies
// subscribers if they changed.
func (s *ObservableSet) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.store.All(ctx, s.name.String())
	if err != nil {
		return fmt.Errorf("%s reload: %w", s.name, err)
	}
	members := membersOf(stored)
	if maps.Equal(members, s.members) {
		return nil
	}

	s.members = members
	s.publishLocked()
	s.log.DebugContext(ctx, "word list reloaded", slog.Int("size", len(members)))
	return nil
}

// apply runs write and then update under the set's lock. update reports
// whether membership changed. Peers are told after every successful write.
func (s *ObservableSet) apply(ctx context.Context, op string, write func() error, update func() bool) error {
	s.mu.Lock()
	if err := write(); err != nil {
		s.mu.Unlock()
		return err
	}
	if update() {
		s.publishLocked()
		s.metrics.RecordListMutation(s.name.String(), op)
	}
	s.mu.Unlock()

	if s.peers != nil {
		s.peers.ListChanged(ctx, s.name)
	}
	return nil
}

// Contains reports whether word is in the set.
func (s *ObservableSet) Contains(word string) bool {
	w := domain.NormalizeWord(word)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[w]
	return ok
}

// Snapshot returns the members in ascending order.
func (s *ObservableSet) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that first yields the current snapshot and then
// the snapshot after every mutation. A slow reader only sees the latest
// snapshot. The channel is closed once ctx is done.
func (s *ObservableSet) Subscribe(ctx context.Context) <-chan []string {
	ch := make(chan []string, 1)

	s.mu.Lock()
	ch <- s.snapshotLocked()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *ObservableSet) publishLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subs {
		// Replace an unread snapshot; only this goroutine sends while s.mu is held.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *ObservableSet) snapshotLocked() []string {
	out := make([]string, 0, len(s.members))
	for w := range s.members {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

func membersOf(stored map[string]string) map[string]struct{} {
	members := make(map[string]struct{}, len(stored))
	for key := range stored {
		if w := domain.NormalizeWord(key); w != "" {
			members[w] = struct{}{}
		}
	}
	return members
}

func normalize(word string) (string, error) {
	w := domain.NormalizeWord(word)
	if w == "" {
		return "", domain.NewValidationError("word", "required")
	}
	return w, nil
}
