package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/quotebuy/internal/config"
	"github.com/mrlokans/quotebuy/internal/entrypoint"
)

func newConflictsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Inspect charges that succeeded without a stored quote",
		Long: `A conflict is a charge that went through while the quote could not be
stored, usually because someone bought the same quote a moment earlier.
Each one needs a manual refund or a manual insert, then "resolve".`,
	}
	cmd.AddCommand(newConflictsListCommand(cfg), newConflictsResolveCommand(cfg))
	return cmd
}

func newConflictsListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unresolved conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cfg, func(s *entrypoint.Stores) error {
				conflicts, err := s.Audit.ListConflicts(cmd.Context())
				if err != nil {
					return fmt.Errorf("list conflicts: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(conflicts) == 0 {
					fmt.Fprintln(out, "No unresolved conflicts.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCHARGE\tAUTHOR\tCREATED\tQUOTE")
				for _, c := range conflicts {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.ChargeID, c.Author, c.CreatedAt.Format(dateFormat), c.Normalized)
				}
				return w.Flush()
			})
		},
	}
}

func newConflictsResolveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark a conflict as reconciled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid conflict id %q", args[0])
			}
			return withStores(cfg, func(s *entrypoint.Stores) error {
				if err := s.Audit.ResolveConflict(cmd.Context(), uint(id)); err != nil {
					return fmt.Errorf("resolve conflict %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Conflict %d resolved.\n", id)
				return nil
			})
		},
	}
}
