package wordcache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/provider"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockTermRepo struct {
	GetByWordFunc       func(ctx context.Context, word string) (*domain.Term, error)
	SourceURLsFunc      func(ctx context.Context, termID uuid.UUID) ([]string, error)
	AddFunc             func(ctx context.Context, t domain.Term) error
	AddSourcesFunc      func(ctx context.Context, termID uuid.UUID, urls []string) error
	LockWordFunc        func(ctx context.Context, word string) error
	RemoveByWordFunc    func(ctx context.Context, word string) (bool, error)
	DeleteOlderThanFunc func(ctx context.Context, threshold time.Time) (int64, error)
}

func (m *mockTermRepo) GetByWord(ctx context.Context, word string) (*domain.Term, error) {
	return m.GetByWordFunc(ctx, word)
}

func (m *mockTermRepo) SourceURLs(ctx context.Context, termID uuid.UUID) ([]string, error) {
	if m.SourceURLsFunc == nil {
		return []string{}, nil
	}
	return m.SourceURLsFunc(ctx, termID)
}

func (m *mockTermRepo) Add(ctx context.Context, t domain.Term) error {
	return m.AddFunc(ctx, t)
}

func (m *mockTermRepo) AddSources(ctx context.Context, termID uuid.UUID, urls []string) error {
	if m.AddSourcesFunc == nil {
		return nil
	}
	return m.AddSourcesFunc(ctx, termID, urls)
}

func (m *mockTermRepo) LockWord(ctx context.Context, word string) error {
	if m.LockWordFunc == nil {
		return nil
	}
	return m.LockWordFunc(ctx, word)
}

func (m *mockTermRepo) RemoveByWord(ctx context.Context, word string) (bool, error) {
	return m.RemoveByWordFunc(ctx, word)
}

func (m *mockTermRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	return m.DeleteOlderThanFunc(ctx, threshold)
}

type mockPhoneticRepo struct {
	GetByParentFunc func(ctx context.Context, termID uuid.UUID) ([]domain.Phonetic, error)
	AddAllFunc      func(ctx context.Context, phonetics []domain.Phonetic) error
}

func (m *mockPhoneticRepo) GetByParent(ctx context.Context, termID uuid.UUID) ([]domain.Phonetic, error) {
	if m.GetByParentFunc == nil {
		return []domain.Phonetic{}, nil
	}
	return m.GetByParentFunc(ctx, termID)
}

func (m *mockPhoneticRepo) AddAll(ctx context.Context, phonetics []domain.Phonetic) error {
	if m.AddAllFunc == nil {
		return nil
	}
	return m.AddAllFunc(ctx, phonetics)
}

type mockMeaningRepo struct {
	GetByParentFunc func(ctx context.Context, termID uuid.UUID) ([]domain.Meaning, error)
	AddAllFunc      func(ctx context.Context, meanings []domain.Meaning) error
}

func (m *mockMeaningRepo) GetByParent(ctx context.Context, termID uuid.UUID) ([]domain.Meaning, error) {
	if m.GetByParentFunc == nil {
		return []domain.Meaning{}, nil
	}
	return m.GetByParentFunc(ctx, termID)
}

func (m *mockMeaningRepo) AddAll(ctx context.Context, meanings []domain.Meaning) error {
	if m.AddAllFunc == nil {
		return nil
	}
	return m.AddAllFunc(ctx, meanings)
}

type mockDefinitionRepo struct {
	GetByParentsFunc func(ctx context.Context, meaningIDs []uuid.UUID) ([]domain.Definition, error)
	AddAllFunc       func(ctx context.Context, defs []domain.Definition) error
}

func (m *mockDefinitionRepo) GetByParents(ctx context.Context, meaningIDs []uuid.UUID) ([]domain.Definition, error) {
	if m.GetByParentsFunc == nil {
		return []domain.Definition{}, nil
	}
	return m.GetByParentsFunc(ctx, meaningIDs)
}

func (m *mockDefinitionRepo) AddAll(ctx context.Context, defs []domain.Definition) error {
	if m.AddAllFunc == nil {
		return nil
	}
	return m.AddAllFunc(ctx, defs)
}

type mockTxManager struct {
	RunInTxFunc     func(ctx context.Context, fn func(ctx context.Context) error) error
	RunInReadTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	// Default: pass-through (no real transaction).
	return fn(ctx)
}

func (m *mockTxManager) RunInReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInReadTxFunc != nil {
		return m.RunInReadTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockDictionaryProvider struct {
	FetchWordFunc func(ctx context.Context, word string) (*provider.WordResult, error)
}

func (m *mockDictionaryProvider) FetchWord(ctx context.Context, word string) (*provider.WordResult, error) {
	return m.FetchWordFunc(ctx, word)
}

type mockHistory struct {
	AddFunc func(ctx context.Context, word string) error
}

func (m *mockHistory) Add(ctx context.Context, word string) error {
	return m.AddFunc(ctx, word)
}

type mockNotifier struct {
	mu      sync.Mutex
	words   []string
	cleared int
}

func (m *mockNotifier) WordChanged(_ context.Context, word string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words = append(m.words, word)
}

func (m *mockNotifier) CacheCleared(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
}
