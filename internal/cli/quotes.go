package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/quotebuy/internal/config"
	"github.com/mrlokans/quotebuy/internal/entrypoint"
)

const dateFormat = "2006-01-02"

func newRandomCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Print a random published quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cfg, func(s *entrypoint.Stores) error {
				q, err := s.Quotes.GetRandom(cmd.Context())
				if err != nil {
					return fmt.Errorf("random quote: %w", err)
				}
				out := cmd.OutOrStdout()
				if q == nil {
					fmt.Fprintln(out, "No quotes! Someone should buy one.")
					return nil
				}
				fmt.Fprintf(out, "%s\n  -- %s (#%d, %s)\n", q.Normalized, q.Author, q.ID, q.Created.Format(dateFormat))
				return nil
			})
		},
	}
}

func newStatsCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print quote and author counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cfg, func(s *entrypoint.Stores) error {
				ctx := cmd.Context()
				total, err := s.Quotes.Count(ctx)
				if err != nil {
					return fmt.Errorf("count quotes: %w", err)
				}
				authors, err := s.Quotes.CountDistinctAuthors(ctx)
				if err != nil {
					return fmt.Errorf("count authors: %w", err)
				}
				conflicts, err := s.Audit.ListConflicts(ctx)
				if err != nil {
					return fmt.Errorf("list conflicts: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "quotes:    %d\n", total)
				fmt.Fprintf(out, "authors:   %d\n", authors)
				fmt.Fprintf(out, "conflicts: %d unresolved\n", len(conflicts))
				return nil
			})
		},
	}
}
