package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/service/randomword"
	"github.com/heartmarshall/owl-backend/internal/service/wordcache"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockWordService struct {
	LookupFunc        func(ctx context.Context, word string) (*wordcache.LookupResult, error)
	GetCachedWordFunc func(ctx context.Context, word string) (*domain.Word, error)
	ForgetFunc        func(ctx context.Context, word string) (bool, error)
}

func (m *mockWordService) Lookup(ctx context.Context, word string) (*wordcache.LookupResult, error) {
	return m.LookupFunc(ctx, word)
}

func (m *mockWordService) GetCachedWord(ctx context.Context, word string) (*domain.Word, error) {
	return m.GetCachedWordFunc(ctx, word)
}

func (m *mockWordService) Forget(ctx context.Context, word string) (bool, error) {
	return m.ForgetFunc(ctx, word)
}

type mockRandomService struct {
	GetLocalPickFunc        func(ctx context.Context) (randomword.Pick, error)
	GetRemoteRandomWordFunc func(ctx context.Context) (randomword.Pick, error)
}

func (m *mockRandomService) GetLocalPick(ctx context.Context) (randomword.Pick, error) {
	return m.GetLocalPickFunc(ctx)
}

func (m *mockRandomService) GetRemoteRandomWord(ctx context.Context) (randomword.Pick, error) {
	return m.GetRemoteRandomWordFunc(ctx)
}

// fakeList is a minimal in-memory wordList with a single-shot subscription.
type fakeList struct {
	mu      sync.Mutex
	words   []string
	err     error
	updates chan []string
}

func newFakeList(words ...string) *fakeList {
	return &fakeList{words: words, updates: make(chan []string, 4)}
}

func (f *fakeList) Add(_ context.Context, word string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	w := domain.NormalizeWord(word)
	if w == "" {
		return domain.NewValidationError("word", "required")
	}
	for _, x := range f.words {
		if x == w {
			return nil
		}
	}
	f.words = append(f.words, w)
	return nil
}

func (f *fakeList) Remove(_ context.Context, word string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	w := domain.NormalizeWord(word)
	out := f.words[:0]
	for _, x := range f.words {
		if x != w {
			out = append(out, x)
		}
	}
	f.words = out
	return nil
}

func (f *fakeList) RemoveAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.words = nil
	return nil
}

func (f *fakeList) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.words...)
}

func (f *fakeList) Subscribe(ctx context.Context) <-chan []string {
	out := make(chan []string, 1)
	out <- f.Snapshot()
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-f.updates:
				out <- snap
			}
		}
	}()
	return out
}
