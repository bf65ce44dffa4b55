package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/service/randomword"
	"github.com/heartmarshall/owl-backend/internal/service/wordcache"
)

type wordService interface {
	Lookup(ctx context.Context, word string) (*wordcache.LookupResult, error)
	GetCachedWord(ctx context.Context, word string) (*domain.Word, error)
	Forget(ctx context.Context, word string) (bool, error)
	Purge(ctx context.Context, threshold time.Time) (int64, error)
}

type randomService interface {
	GetLocalPick(ctx context.Context) (randomword.Pick, error)
	GetRemoteRandomWord(ctx context.Context) (randomword.Pick, error)
}

type wordList interface {
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
	RemoveAll(ctx context.Context) error
	Snapshot() []string
	Subscribe(ctx context.Context) <-chan []string
}

// services is what the commands operate on. It is built once per invocation
// by the root command's pre-run hook.
type services struct {
	words      wordService
	random     randomService
	history    wordList
	favourites wordList
	retention  time.Duration
	close      func()
}

func (s *services) list(name domain.WordList) wordList {
	if name == domain.ListFavourites {
		return s.favourites
	}
	return s.history
}

type loader func(ctx context.Context) (*services, error)

var errNotLoaded = errors.New("services not loaded")

func newRootCommand(load loader) *cobra.Command {
	var svc *services

	root := &cobra.Command{
		Use:           "owlctl",
		Short:         "Inspect and manage the Owl word cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load(cmd.Context())
			if err != nil {
				return err
			}
			svc = s
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if svc != nil && svc.close != nil {
				svc.close()
			}
		},
	}

	get := func() (*services, error) {
		if svc == nil {
			return nil, errNotLoaded
		}
		return svc, nil
	}

	root.AddCommand(
		lookupCommand(get),
		randomCommand(get),
		listCommand(domain.ListHistory, get),
		listCommand(domain.ListFavourites, get),
		cacheCommand(get),
	)
	return root
}
