// Package cli implements the quotebuy command line using Cobra.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/quotebuy/internal/config"
	"github.com/mrlokans/quotebuy/internal/entrypoint"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the HTTP server.
func NewRootCommand(version string) *cobra.Command {
	cfg := config.NewConfig()

	root := &cobra.Command{
		Use:   "quotebuy",
		Short: "quotebuy: publish a quote for a small fee",
		Long: `quotebuy is a web application where visitors pay to publish a short quote.

Configuration is read from the environment, for example:
  DATABASE_PATH=./quotebuy.db STRIPE_SECRET_KEY=sk_... quotebuy serve`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cfg, version)
		},
	}
	root.PersistentFlags().StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the SQLite database")

	root.AddCommand(
		newServeCommand(cfg, version),
		newRandomCommand(cfg),
		newStatsCommand(cfg),
		newConflictsCommand(cfg),
	)
	return root
}

func newServeCommand(cfg *config.Config, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cfg, version)
		},
	}
	cmd.Flags().Int32Var(&cfg.HTTP.Port, "port", cfg.HTTP.Port, "Port to listen on")
	cmd.Flags().StringVar(&cfg.HTTP.Host, "host", cfg.HTTP.Host, "Address to bind")
	return cmd
}

// withStores opens the database for the duration of fn.
func withStores(cfg *config.Config, fn func(*entrypoint.Stores) error) (err error) {
	stores, err := entrypoint.OpenStores(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stores.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(stores)
}
