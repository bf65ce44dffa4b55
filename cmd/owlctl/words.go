package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/service/randomword"
)

func lookupCommand(get func() (*services, error)) *cobra.Command {
	var cachedOnly bool

	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up a word, fetching it from the remote dictionary on a cache miss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := get()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cachedOnly {
				w, err := svc.words.GetCachedWord(ctx, args[0])
				if err != nil {
					return err
				}
				if w == nil {
					fmt.Fprintf(out, "%s: not cached\n", domain.NormalizeWord(args[0]))
					return nil
				}
				printWord(out, w, true)
				return nil
			}

			res, err := svc.words.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			printWord(out, res.Word, res.FromCache)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cachedOnly, "cached", false, "only read the local cache")
	return cmd
}

func randomCommand(get func() (*services, error)) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := get()
			if err != nil {
				return err
			}

			var pick randomword.Pick
			if remote {
				pick, err = svc.random.GetRemoteRandomWord(cmd.Context())
			} else {
				pick, err = svc.random.GetLocalPick(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", pick.Word, pick.Source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the remote random word service first")
	return cmd
}

func cacheCommand(get func() (*services, error)) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain cached words",
	}

	forget := &cobra.Command{
		Use:   "forget <word>",
		Short: "Remove a word from the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := get()
			if err != nil {
				return err
			}
			removed, err := svc.words.Forget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not cached\n", domain.NormalizeWord(args[0]))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: removed\n", domain.NormalizeWord(args[0]))
			return nil
		},
	}

	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Remove cached words older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := get()
			if err != nil {
				return err
			}
			age := olderThan
			if age <= 0 {
				age = svc.retention
			}
			deleted, err := svc.words.Purge(cmd.Context(), time.Now().Add(-age))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d words older than %s\n", deleted, age)
			return nil
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 0, "age threshold (defaults to the configured retention)")

	cacheCmd.AddCommand(forget, purge)
	return cacheCmd
}

func printWord(out io.Writer, w *domain.Word, fromCache bool) {
	source := "remote"
	if fromCache {
		source = "cache"
	}
	fmt.Fprintf(out, "%s (%s)\n", w.Term.Word, source)

	for _, p := range w.Phonetics {
		if p.Text != nil && *p.Text != "" {
			fmt.Fprintf(out, "  %s\n", *p.Text)
		}
	}
	for _, m := range w.Meanings {
		fmt.Fprintf(out, "  %s\n", m.PartOfSpeech)
		for i, d := range m.Definitions {
			fmt.Fprintf(out, "    %d. %s\n", i+1, d.Text)
			if d.Example != nil && *d.Example != "" {
				fmt.Fprintf(out, "       %q\n", *d.Example)
			}
			if len(d.Synonyms) > 0 {
				fmt.Fprintf(out, "       synonyms: %s\n", strings.Join(d.Synonyms, ", "))
			}
		}
	}
}
