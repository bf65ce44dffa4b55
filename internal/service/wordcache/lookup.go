package wordcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/provider"
)

// defaultFetchTimeout bounds a shared fetch when no request timeout is configured.
const defaultFetchTimeout = 30 * time.Second

// LookupResult is the outcome of Lookup.
type LookupResult struct {
	Word      *domain.Word
	FromCache bool
}

// Lookup returns the cached record for word, fetching and storing it from the
// remote dictionary on a miss. Concurrent misses for the same normalized word
// share a single remote request. Remote failures are returned as
// *domain.LookupError and are not retried here.
//
// The shared fetch is detached from any single caller: a caller whose ctx ends
// returns ctx.Err() while the others keep waiting for the result.
func (s *Service) Lookup(ctx context.Context, word string) (*LookupResult, error) {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return nil, domain.NewValidationError("word", "required")
	}

	cached, err := s.GetCachedWord(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		s.metrics.RecordLookup(true)
		s.recordHistory(ctx, normalized)
		return &LookupResult{Word: cached, FromCache: true}, nil
	}
	s.metrics.RecordLookup(false)

	ch := s.group.DoChan(normalized, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout())
		defer cancel()
		return s.fetchAndStore(fetchCtx, normalized)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		s.recordHistory(ctx, normalized)
		// Every waiter gets the same value; hand out copies.
		return &LookupResult{Word: r.Val.(*domain.Word).Clone()}, nil
	}
}

func (s *Service) fetchTimeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout
	}
	return defaultFetchTimeout
}

func (s *Service) fetchAndStore(ctx context.Context, normalized string) (*domain.Word, error) {
	start := time.Now()
	result, err := s.dict.FetchWord(ctx, normalized)
	s.metrics.ObserveRemoteFetch("freedict", time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lookupErr := classifyRemoteError(normalized, err)
		s.metrics.RecordRemoteError(string(lookupErr.Kind))
		s.log.WarnContext(ctx, "dictionary provider error",
			slog.String("word", normalized),
			slog.String("kind", string(lookupErr.Kind)),
			slog.String("error", err.Error()),
		)
		return nil, lookupErr
	}
	if result == nil || len(result.Meanings) == 0 {
		s.metrics.RecordRemoteError(string(domain.LookupNotFound))
		return nil, &domain.LookupError{Word: normalized, Kind: domain.LookupNotFound}
	}

	stored, err := s.StoreWord(ctx, mapToWord(normalized, result))
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// classifyRemoteError maps a provider failure to the lookup taxonomy.
// HTTP statuses are classified by code; everything else is a network error.
func classifyRemoteError(word string, err error) *domain.LookupError {
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		return &domain.LookupError{Word: word, Kind: domain.ClassifyStatus(statusErr.StatusCode), Err: err}
	}
	return &domain.LookupError{Word: word, Kind: domain.LookupNetwork, Err: err}
}

func (s *Service) recordHistory(ctx context.Context, word string) {
	if s.history == nil || !s.cfg.RecordHistory {
		return
	}
	if err := s.history.Add(ctx, word); err != nil {
		s.log.WarnContext(ctx, "record history failed",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
	}
}
