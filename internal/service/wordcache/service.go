package wordcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/owl-backend/internal/config"
	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/observability/metrics"
	"github.com/heartmarshall/owl-backend/internal/provider"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces
// ---------------------------------------------------------------------------

type termRepo interface {
	GetByWord(ctx context.Context, word string) (*domain.Term, error)
	SourceURLs(ctx context.Context, termID uuid.UUID) ([]string, error)
	Add(ctx context.Context, t domain.Term) error
	AddSources(ctx context.Context, termID uuid.UUID, urls []string) error
	LockWord(ctx context.Context, word string) error
	RemoveByWord(ctx context.Context, word string) (bool, error)
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}

type phoneticRepo interface {
	GetByParent(ctx context.Context, termID uuid.UUID) ([]domain.Phonetic, error)
	AddAll(ctx context.Context, phonetics []domain.Phonetic) error
}

type meaningRepo interface {
	GetByParent(ctx context.Context, termID uuid.UUID) ([]domain.Meaning, error)
	AddAll(ctx context.Context, meanings []domain.Meaning) error
}

type definitionRepo interface {
	GetByParents(ctx context.Context, meaningIDs []uuid.UUID) ([]domain.Definition, error)
	AddAll(ctx context.Context, defs []domain.Definition) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type dictionaryProvider interface {
	FetchWord(ctx context.Context, word string) (*provider.WordResult, error)
}

type historyRecorder interface {
	Add(ctx context.Context, word string) error
}

type changeNotifier interface {
	WordChanged(ctx context.Context, word string)
	CacheCleared(ctx context.Context)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the local word cache: it reads and writes fully assembled words
// and fills itself from the remote dictionary on a miss.
type Service struct {
	log         *slog.Logger
	terms       termRepo
	phonetics   phoneticRepo
	meanings    meaningRepo
	definitions definitionRepo
	tx          txManager
	dict        dictionaryProvider
	cfg         config.DictionaryConfig

	hot     *cache.Cache
	group   singleflight.Group
	history historyRecorder
	metrics *metrics.Metrics
	changes changeNotifier
}

// NewService creates a new word cache service. A zero HotCacheTTL disables
// the in-memory layer.
func NewService(
	logger *slog.Logger,
	terms termRepo,
	phonetics phoneticRepo,
	meanings meaningRepo,
	definitions definitionRepo,
	tx txManager,
	dict dictionaryProvider,
	cfg config.DictionaryConfig,
) *Service {
	s := &Service{
		log:         logger.With("service", "wordcache"),
		terms:       terms,
		phonetics:   phonetics,
		meanings:    meanings,
		definitions: definitions,
		tx:          tx,
		dict:        dict,
		cfg:         cfg,
	}
	if cfg.HotCacheTTL > 0 {
		s.hot = cache.New(cfg.HotCacheTTL, 2*cfg.HotCacheTTL)
	}
	return s
}

// SetHistory injects the optional recorder of successful lookups.
func (s *Service) SetHistory(h historyRecorder) {
	s.history = h
}

// SetMetrics injects the optional metrics sink.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetNotifier injects the optional sink that tells other processes about
// stored, forgotten and purged words.
func (s *Service) SetNotifier(n changeNotifier) {
	s.changes = n
}

// Invalidate drops word from the in-memory layer only.
func (s *Service) Invalidate(word string) {
	s.hotDelete(domain.NormalizeWord(word))
}

// InvalidateAll empties the in-memory layer.
func (s *Service) InvalidateAll() {
	if s.hot != nil {
		s.hot.Flush()
	}
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

// GetCachedWord returns the cached record for word, or (nil, nil) when the
// word is not cached. The term and its children are read in one read-only
// transaction, so a concurrent StoreWord is observed entirely or not at all.
func (s *Service) GetCachedWord(ctx context.Context, word string) (*domain.Word, error) {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return nil, nil
	}

	if w, ok := s.hotGet(normalized); ok {
		return w, nil
	}

	var result *domain.Word
	err := s.tx.RunInReadTx(ctx, func(ctx context.Context) error {
		term, err := s.terms.GetByWord(ctx, normalized)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get term: %w", err)
		}

		phonetics, err := s.phonetics.GetByParent(ctx, term.ID)
		if err != nil {
			return fmt.Errorf("get phonetics: %w", err)
		}

		meanings, err := s.meanings.GetByParent(ctx, term.ID)
		if err != nil {
			return fmt.Errorf("get meanings: %w", err)
		}

		meaningIDs := make([]uuid.UUID, len(meanings))
		for i, m := range meanings {
			meaningIDs[i] = m.ID
		}
		defs, err := s.definitions.GetByParents(ctx, meaningIDs)
		if err != nil {
			return fmt.Errorf("get definitions: %w", err)
		}

		sources, err := s.terms.SourceURLs(ctx, term.ID)
		if err != nil {
			return fmt.Errorf("get sources: %w", err)
		}

		result = assembleWord(*term, phonetics, meanings, defs, sources)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get cached word %q: %w", normalized, err)
	}

	if result != nil {
		s.hotSet(normalized, result)
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Write
// ---------------------------------------------------------------------------

// StoreWord replaces whatever is cached under the word's normalized form with
// w. Fresh ids and positions are assigned; the input is not modified. The
// delete and every insert run in one transaction, so storing the same word
// twice leaves exactly one copy.
func (s *Service) StoreWord(ctx context.Context, w *domain.Word) (*domain.Word, error) {
	if w == nil {
		return nil, domain.NewValidationError("word", "required")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	prepared := prepareWord(w, time.Now().UTC())
	normalized := prepared.Term.WordNormalized

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Serializes concurrent stores of the same word inside the database.
		if err := s.terms.LockWord(ctx, normalized); err != nil {
			return fmt.Errorf("lock word: %w", err)
		}
		if _, err := s.terms.RemoveByWord(ctx, normalized); err != nil {
			return fmt.Errorf("remove previous term: %w", err)
		}
		if err := s.terms.Add(ctx, prepared.Term); err != nil {
			return fmt.Errorf("add term: %w", err)
		}
		if err := s.terms.AddSources(ctx, prepared.Term.ID, prepared.SourceURLs); err != nil {
			return fmt.Errorf("add sources: %w", err)
		}
		if err := s.phonetics.AddAll(ctx, prepared.Phonetics); err != nil {
			return fmt.Errorf("add phonetics: %w", err)
		}
		if err := s.meanings.AddAll(ctx, prepared.Meanings); err != nil {
			return fmt.Errorf("add meanings: %w", err)
		}
		if err := s.definitions.AddAll(ctx, flattenDefinitions(prepared.Meanings)); err != nil {
			return fmt.Errorf("add definitions: %w", err)
		}
		return nil
	})

	// Drop the hot entry even on failure: the stored state is unknown to us.
	s.hotDelete(normalized)

	if err != nil {
		return nil, fmt.Errorf("store word %q: %w", normalized, err)
	}

	s.notifyWord(ctx, normalized)
	s.log.InfoContext(ctx, "word stored",
		slog.String("word", normalized),
		slog.String("term_id", prepared.Term.ID.String()),
		slog.Int("meanings", len(prepared.Meanings)),
		slog.Int("definitions", prepared.DefinitionCount()),
	)

	return prepared, nil
}

// Forget removes word from the cache. It reports whether anything was removed.
func (s *Service) Forget(ctx context.Context, word string) (bool, error) {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return false, domain.NewValidationError("word", "required")
	}

	removed, err := s.terms.RemoveByWord(ctx, normalized)
	s.hotDelete(normalized)
	if err != nil {
		return false, fmt.Errorf("forget %q: %w", normalized, err)
	}
	if removed {
		s.notifyWord(ctx, normalized)
	}
	return removed, nil
}

// Purge removes every word cached before threshold and returns how many
// were removed.
func (s *Service) Purge(ctx context.Context, threshold time.Time) (int64, error) {
	n, err := s.terms.DeleteOlderThan(ctx, threshold)
	s.InvalidateAll()
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	if n > 0 && s.changes != nil {
		s.changes.CacheCleared(ctx)
	}

	s.log.InfoContext(ctx, "word cache purged",
		slog.Time("threshold", threshold),
		slog.Int64("deleted", n),
	)
	return n, nil
}

// ---------------------------------------------------------------------------
// Hot cache
// ---------------------------------------------------------------------------

func (s *Service) notifyWord(ctx context.Context, word string) {
	if s.changes != nil {
		s.changes.WordChanged(ctx, word)
	}
}

// hotGet and hotSet copy on the way in and out so callers never share a
// cached record.
func (s *Service) hotGet(key string) (*domain.Word, bool) {
	if s.hot == nil {
		return nil, false
	}
	v, ok := s.hot.Get(key)
	if !ok {
		return nil, false
	}
	w, ok := v.(*domain.Word)
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

func (s *Service) hotSet(key string, w *domain.Word) {
	if s.hot != nil {
		s.hot.SetDefault(key, w.Clone())
	}
}

func (s *Service) hotDelete(key string) {
	if s.hot != nil {
		s.hot.Delete(key)
	}
}
