package wordlist

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type memStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
	ops  []string
	fail error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]map[string]string{}}
}

func (m *memStore) Set(_ context.Context, store, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.data[store] == nil {
		m.data[store] = map[string]string{}
	}
	m.data[store][key] = value
	m.ops = append(m.ops, "set "+key)
	return nil
}

func (m *memStore) Delete(_ context.Context, store, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.data[store], key)
	m.ops = append(m.ops, "delete "+key)
	return nil
}

func (m *memStore) All(_ context.Context, store string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return maps.Clone(m.data[store]), nil
}

func (m *memStore) Clear(_ context.Context, store string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.data, store)
	m.ops = append(m.ops, "clear")
	return nil
}

func (m *memStore) has(store, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[store][key]
	return ok
}

func (m *memStore) setFail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func openTestSet(t *testing.T, store *memStore, name domain.WordList) *ObservableSet {
	t.Helper()
	s, err := Open(context.Background(), name, store, slog.Default())
	require.NoError(t, err)
	return s
}

func receive(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen_UnknownList(t *testing.T) {
	_, err := Open(context.Background(), domain.WordList("recent"), newMemStore(), slog.Default())

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOpen_StoreError(t *testing.T) {
	store := newMemStore()
	store.setFail(errors.New("disk full"))

	_, err := Open(context.Background(), domain.ListHistory, store, slog.Default())

	assert.Error(t, err)
}

func TestOpen_ReconstructsAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	first := openTestSet(t, store, domain.ListFavourites)
	require.NoError(t, first.Add(ctx, "owl"))
	require.NoError(t, first.Add(ctx, "Cat"))
	require.NoError(t, first.Add(ctx, "dog"))
	require.NoError(t, first.Remove(ctx, "dog"))

	second := openTestSet(t, store, domain.ListFavourites)

	assert.Equal(t, []string{"cat", "owl"}, second.Snapshot())
}

func TestOpen_ListsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	history := openTestSet(t, store, domain.ListHistory)
	favourites := openTestSet(t, store, domain.ListFavourites)

	require.NoError(t, history.Add(ctx, "owl"))

	assert.True(t, history.Contains("owl"))
	assert.False(t, favourites.Contains("owl"))
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

func TestObservableSet_AddTwiceKeepsOneCopy(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openTestSet(t, store, domain.ListFavourites)

	require.NoError(t, s.Add(ctx, "cat"))
	require.NoError(t, s.Add(ctx, " CAT "))

	assert.Equal(t, []string{"cat"}, s.Snapshot())
	assert.Equal(t, []string{"set cat", "set cat"}, store.ops)
}

func TestObservableSet_RemoveAbsentDoesNotNotify(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemStore()
	s := openTestSet(t, store, domain.ListFavourites)
	ch := s.Subscribe(ctx)
	receive(t, ch)

	require.NoError(t, s.Remove(ctx, "cat"))

	assert.Empty(t, s.Snapshot())
	assert.Equal(t, []string{"delete cat"}, store.ops)
	select {
	case snap := <-ch:
		t.Fatalf("unexpected notification: %v", snap)
	default:
	}
}

func TestObservableSet_BlankWord(t *testing.T) {
	s := openTestSet(t, newMemStore(), domain.ListHistory)

	assert.ErrorIs(t, s.Add(context.Background(), "  "), domain.ErrValidation)
	assert.ErrorIs(t, s.Remove(context.Background(), ""), domain.ErrValidation)
}

func TestObservableSet_SequentialAddRemoveFollowsIssueOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openTestSet(t, store, domain.ListFavourites)

	require.NoError(t, s.Add(ctx, "cat"))
	require.NoError(t, s.Remove(ctx, "cat"))
	assert.False(t, s.Contains("cat"))
	assert.False(t, store.has("favourites", "cat"))

	require.NoError(t, s.Remove(ctx, "cat"))
	require.NoError(t, s.Add(ctx, "cat"))
	assert.True(t, s.Contains("cat"))
	assert.True(t, store.has("favourites", "cat"))

	assert.Equal(t, []string{"set cat", "delete cat", "delete cat", "set cat"}, store.ops)
}

func TestObservableSet_RemoveAll(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openTestSet(t, store, domain.ListHistory)

	for _, w := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(ctx, w))
	}
	require.NoError(t, s.RemoveAll(ctx))

	assert.Empty(t, s.Snapshot())
	assert.Empty(t, openTestSet(t, store, domain.ListHistory).Snapshot())
}

func TestObservableSet_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openTestSet(t, store, domain.ListFavourites)
	require.NoError(t, s.Add(ctx, "owl"))

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := s.Subscribe(subCtx)
	assert.Equal(t, []string{"owl"}, receive(t, ch))

	boom := errors.New("write failed")
	store.setFail(boom)

	assert.ErrorIs(t, s.Add(ctx, "cat"), boom)
	assert.ErrorIs(t, s.Remove(ctx, "owl"), boom)
	assert.ErrorIs(t, s.RemoveAll(ctx), boom)

	assert.Equal(t, []string{"owl"}, s.Snapshot())
	select {
	case snap := <-ch:
		t.Fatalf("unexpected notification after failed write: %v", snap)
	default:
	}
}

func TestObservableSet_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openTestSet(t, store, domain.ListHistory)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			word := string(rune('a' + i%10))
			_ = s.Add(ctx, word)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Snapshot(), 10)
	assert.Len(t, store.ops, 50, "every add is written through")
}

// ---------------------------------------------------------------------------
// Shared store
// ---------------------------------------------------------------------------

type recordingNotifier struct {
	mu    sync.Mutex
	lists []domain.WordList
}

func (r *recordingNotifier) ListChanged(_ context.Context, list domain.WordList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, list)
}

func TestObservableSet_RemoveWordAddedElsewhere(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cli := openTestSet(t, store, domain.ListFavourites)
	server := openTestSet(t, store, domain.ListFavourites)

	require.NoError(t, cli.Add(ctx, "cat"))
	require.NoError(t, server.Remove(ctx, "cat"))

	assert.False(t, store.has("favourites", "cat"))
	assert.Empty(t, openTestSet(t, store, domain.ListFavourites).Snapshot())
}

func TestObservableSet_AddWordRemovedElsewhere(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cli := openTestSet(t, store, domain.ListFavourites)
	require.NoError(t, cli.Add(ctx, "cat"))
	server := openTestSet(t, store, domain.ListFavourites)

	require.NoError(t, cli.Remove(ctx, "cat"))
	require.NoError(t, server.Add(ctx, "cat"))

	assert.True(t, store.has("favourites", "cat"))
}

func TestObservableSet_Reload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemStore()
	cli := openTestSet(t, store, domain.ListHistory)
	server := openTestSet(t, store, domain.ListHistory)
	ch := server.Subscribe(ctx)
	receive(t, ch)

	require.NoError(t, cli.Add(ctx, "owl"))
	require.NoError(t, cli.Add(ctx, "cat"))
	require.NoError(t, server.Reload(ctx))

	assert.Equal(t, []string{"cat", "owl"}, receive(t, ch))
	assert.True(t, server.Contains("owl"))

	require.NoError(t, server.Reload(ctx))
	select {
	case snap := <-ch:
		t.Fatalf("reload without changes notified: %v", snap)
	default:
	}

	require.NoError(t, cli.RemoveAll(ctx))
	require.NoError(t, server.Reload(ctx))
	assert.Empty(t, receive(t, ch))
}

func TestObservableSet_ReloadStoreError(t *testing.T) {
	store := newMemStore()
	s := openTestSet(t, store, domain.ListHistory)
	require.NoError(t, s.Add(context.Background(), "owl"))

	boom := errors.New("read failed")
	store.setFail(boom)

	assert.ErrorIs(t, s.Reload(context.Background()), boom)
	assert.Equal(t, []string{"owl"}, s.Snapshot())
}

func TestObservableSet_NotifiesPeersAfterWrite(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openTestSet(t, store, domain.ListFavourites)
	peers := &recordingNotifier{}
	s.SetNotifier(peers)

	require.NoError(t, s.Add(ctx, "owl"))
	require.NoError(t, s.Remove(ctx, "owl"))
	require.NoError(t, s.RemoveAll(ctx))

	store.setFail(errors.New("write failed"))
	require.Error(t, s.Add(ctx, "cat"))

	assert.Equal(t, []domain.WordList{domain.ListFavourites, domain.ListFavourites, domain.ListFavourites}, peers.lists)
}

// ---------------------------------------------------------------------------
// Subscribe
// ---------------------------------------------------------------------------

func TestObservableSet_SubscribeReceivesCurrentThenUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := openTestSet(t, newMemStore(), domain.ListFavourites)
	require.NoError(t, s.Add(ctx, "owl"))

	ch := s.Subscribe(ctx)
	assert.Equal(t, []string{"owl"}, receive(t, ch))

	require.NoError(t, s.Add(ctx, "cat"))
	assert.Equal(t, []string{"cat", "owl"}, receive(t, ch))

	require.NoError(t, s.Remove(ctx, "owl"))
	assert.Equal(t, []string{"cat"}, receive(t, ch))
}

func TestObservableSet_PersistsBeforeNotify(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemStore()
	s := openTestSet(t, store, domain.ListFavourites)
	ch := s.Subscribe(ctx)
	receive(t, ch)

	require.NoError(t, s.Add(ctx, "owl"))
	snap := receive(t, ch)

	assert.Equal(t, []string{"owl"}, snap)
	assert.True(t, store.has("favourites", "owl"), "subscriber saw a value that was not yet persisted")
}

func TestObservableSet_SlowSubscriberGetsLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := openTestSet(t, newMemStore(), domain.ListHistory)
	ch := s.Subscribe(ctx)

	for _, w := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(ctx, w))
	}

	assert.Equal(t, []string{"a", "b", "c"}, receive(t, ch))
	select {
	case snap := <-ch:
		t.Fatalf("expected only the latest snapshot, got extra %v", snap)
	default:
	}
}

func TestObservableSet_SubscriptionClosesOnCancel(t *testing.T) {
	s := openTestSet(t, newMemStore(), domain.ListHistory)

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	receive(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected closed channel")
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}

	// Mutations after the subscriber left must not block or panic.
	require.NoError(t, s.Add(context.Background(), "owl"))
}

func TestObservableSet_ManySubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := openTestSet(t, newMemStore(), domain.ListFavourites)
	subs := make([]<-chan []string, 5)
	for i := range subs {
		subs[i] = s.Subscribe(ctx)
		receive(t, subs[i])
	}

	require.NoError(t, s.Add(ctx, "owl"))

	for _, ch := range subs {
		assert.Equal(t, []string{"owl"}, receive(t, ch))
	}
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestObservableSet_RecordsMutations(t *testing.T) {
	ctx := context.Background()
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	s := openTestSet(t, newMemStore(), domain.ListFavourites)
	s.SetMetrics(m)

	require.NoError(t, s.Add(ctx, "owl"))
	require.NoError(t, s.Add(ctx, "owl"))
	require.NoError(t, s.Remove(ctx, "owl"))
	require.NoError(t, s.RemoveAll(ctx))

	expected := `
# HELP owl_word_list_mutations_total Total number of history and favourites mutations
# TYPE owl_word_list_mutations_total counter
owl_word_list_mutations_total{list="favourites",op="add"} 1
owl_word_list_mutations_total{list="favourites",op="clear"} 1
owl_word_list_mutations_total{list="favourites",op="remove"} 1
`
	err = testutil.CollectAndCompare(m, strings.NewReader(expected), "owl_word_list_mutations_total")
	assert.NoError(t, err)
}
