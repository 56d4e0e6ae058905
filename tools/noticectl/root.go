package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	rentapp "rentnotice-cloud/internal/rent/application"
	"rentnotice-cloud/internal/rent/infrastructure/sqlite"
)

type globalOptions struct {
	dbPath  string
	ownerID string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "noticectl",
		Short:         "Render late rent notices and keep a local rent ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", envOr("NOTICECTL_DB", "rentnotice.db"), "SQLite database file")
	root.PersistentFlags().StringVar(&opts.ownerID, "owner", envOr("NOTICECTL_OWNER", "local"), "Owner account id")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newLedgerCmd(opts))
	root.AddCommand(newTenantCmd(opts))
	root.AddCommand(newPaymentCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	return root
}

// withStore opens the SQLite store for the duration of fn.
func withStore(ctx context.Context, opts *globalOptions, fn func(*sqlite.Store) error) error {
	store, err := sqlite.Open(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

var appClock rentapp.Clock = rentapp.SystemClock{}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
