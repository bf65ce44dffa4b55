package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

// listCommand builds the command group for one word list.
func listCommand(name domain.WordList, get func() (*services, error)) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   name.String(),
		Short: fmt.Sprintf("Manage the %s list", name),
	}

	withList := func(run func(cmd *cobra.Command, list wordList, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, err := get()
			if err != nil {
				return err
			}
			return run(cmd, svc.list(name), args)
		}
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print every word in the list",
		Args:  cobra.NoArgs,
		RunE: withList(func(cmd *cobra.Command, list wordList, _ []string) error {
			printWords(cmd.OutOrStdout(), list.Snapshot())
			return nil
		}),
	}

	add := &cobra.Command{
		Use:   "add <word>...",
		Short: "Add words to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: withList(func(cmd *cobra.Command, list wordList, args []string) error {
			for _, w := range args {
				if err := list.Add(cmd.Context(), w); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove <word>...",
		Short: "Remove words from the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: withList(func(cmd *cobra.Command, list wordList, args []string) error {
			for _, w := range args {
				if err := list.Remove(cmd.Context(), w); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every word from the list",
		Args:  cobra.NoArgs,
		RunE: withList(func(cmd *cobra.Command, list wordList, _ []string) error {
			return list.RemoveAll(cmd.Context())
		}),
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the list every time it changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: withList(func(cmd *cobra.Command, list wordList, _ []string) error {
			out := cmd.OutOrStdout()
			for words := range list.Subscribe(cmd.Context()) {
				fmt.Fprintf(out, "[%s]\n", strings.Join(words, " "))
			}
			return nil
		}),
	}

	listCmd.AddCommand(show, add, remove, clearCmd, watch)
	return listCmd
}

func printWords(out io.Writer, words []string) {
	for _, w := range words {
		fmt.Fprintln(out, w)
	}
}
