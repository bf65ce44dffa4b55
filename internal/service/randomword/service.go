package randomword

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/heartmarshall/owl-backend/internal/config"
)

type wordSource interface {
	Words(ctx context.Context) ([]string, error)
}

type remoteSource interface {
	RandomWord(ctx context.Context) (string, error)
}

// Source tells where a random word came from.
type Source string

const (
	SourceLocal    Source = "local"
	SourceFallback Source = "fallback"
	SourceRemote   Source = "remote"
)

// Pick is a chosen word and its origin.
type Pick struct {
	Word   string
	Source Source
}

// Service picks random words from the local cache or the remote random-word API.
type Service struct {
	log      *slog.Logger
	words    wordSource
	remote   remoteSource
	fallback string
	intN     func(n int) int
}

// NewService creates a random word service. The remote source is optional and
// set with SetRemote.
func NewService(logger *slog.Logger, words wordSource, cfg config.DictionaryConfig) *Service {
	return &Service{
		log:      logger.With("service", "randomword"),
		words:    words,
		fallback: cfg.FallbackWord,
		intN:     rand.IntN,
	}
}

// SetRemote injects the remote random-word client.
func (s *Service) SetRemote(r remoteSource) {
	s.remote = r
}

// GetRandomWord returns a word chosen uniformly from the cached terms, or the
// fallback word when nothing is cached. Storage errors are returned as is.
func (s *Service) GetRandomWord(ctx context.Context) (string, error) {
	p, err := s.GetLocalPick(ctx)
	if err != nil {
		return "", err
	}
	return p.Word, nil
}

// GetLocalPick is GetRandomWord that also reports whether the word came from
// the cache or is the fallback word.
func (s *Service) GetLocalPick(ctx context.Context) (Pick, error) {
	return s.pickLocal(ctx)
}

// GetRemoteRandomWord asks the remote API for a word and falls back to
// GetRandomWord when no client is configured, the call fails or the API
// returns nothing.
func (s *Service) GetRemoteRandomWord(ctx context.Context) (Pick, error) {
	if s.remote == nil {
		return s.pickLocal(ctx)
	}

	word, err := s.remote.RandomWord(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Pick{}, ctx.Err()
		}
		s.log.WarnContext(ctx, "remote random word failed, using local pick",
			slog.String("error", err.Error()),
		)
		return s.pickLocal(ctx)
	}

	word = strings.TrimSpace(word)
	if word == "" {
		s.log.DebugContext(ctx, "remote random word empty, using local pick")
		return s.pickLocal(ctx)
	}
	return Pick{Word: word, Source: SourceRemote}, nil
}

func (s *Service) pickLocal(ctx context.Context) (Pick, error) {
	words, err := s.words.Words(ctx)
	if err != nil {
		return Pick{}, fmt.Errorf("random word: %w", err)
	}
	if len(words) == 0 {
		return Pick{Word: s.fallback, Source: SourceFallback}, nil
	}
	return Pick{Word: words[s.intN(len(words))], Source: SourceLocal}, nil
}
