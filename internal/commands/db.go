package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/store"
)

func newDBCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the PostgreSQL reporting replica",
	}
	cmd.AddCommand(newDBMigrateCommand(a), newDBSyncCommand(a))
	return cmd
}

func (a *app) postgres(cmd *cobra.Command) (*store.Postgres, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	if a.cfg.Storage.DatabaseURL == "" {
		return nil, fmt.Errorf("no database configured: set storage.database_url or DATABASE_URL")
	}
	return store.NewPostgres(cmd.Context(), a.cfg.Storage.DatabaseURL)
}

func newDBMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the replica schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pg, err := a.postgres(cmd)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := pg.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed")
			return nil
		},
	}
}

func newDBSyncCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy the chart and approved journal legs into the replica",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pg, err := a.postgres(cmd)
			if err != nil {
				return err
			}
			defer pg.Close()

			ctx := cmd.Context()
			books := store.NewFileStore(a.root)
			accts, err := books.ListAccounts(ctx)
			if err != nil {
				return err
			}
			txns, err := books.ListTransactions(ctx)
			if err != nil {
				return err
			}
			if err := pg.Migrate(ctx); err != nil {
				return err
			}
			if err := pg.Sync(ctx, accts, txns); err != nil {
				return err
			}

			details := fmt.Sprintf("%d accounts, %d transactions", len(accts), len(txns))
			event := audit.NewEvent(a.actor, audit.ActionReplicaSynced, "postgres", details)
			if err := a.recorded(ctx, event, "db: sync replica"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s\n", details)
			return nil
		},
	}
}
