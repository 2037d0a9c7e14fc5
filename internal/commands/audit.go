package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/store"
)

func newAuditCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}
	cmd.AddCommand(newAuditListCommand(a))
	return cmd
}

func newAuditListCommand(a *app) *cobra.Command {
	var action string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit events, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			events, err := a.auditEvents(cmd.Context())
			if err != nil {
				return err
			}

			filtered := make([]audit.Event, 0, len(events))
			for _, e := range events {
				if action == "" || e.Action == action {
					filtered = append(filtered, e)
				}
			}
			if limit > 0 && len(filtered) > limit {
				filtered = filtered[len(filtered)-limit:]
			}

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), filtered)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTOR\tACTION\tSUBJECT\tDETAILS")
			for _, e := range filtered {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Actor, e.Action, e.Subject, e.Details)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "only show this action, e.g. journal.approved")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many recent events")
	return cmd
}

// auditEvents reads events from the repository when it keeps its own log,
// else from the books directory.
func (a *app) auditEvents(ctx context.Context) ([]audit.Event, error) {
	if a.cfg.Storage.Driver != config.DriverPostgres {
		return audit.Read(a.root)
	}
	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close(repo)
	if pg, ok := repo.(*store.Postgres); ok {
		return pg.AuditEvents(ctx)
	}
	return audit.Read(a.root)
}
