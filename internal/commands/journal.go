package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/accounts"
	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/journal"
	"github.com/tallybooks/tally/internal/model"
)

func newJournalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Submit and review journal entries",
	}
	cmd.AddCommand(
		newJournalSubmitCommand(a),
		newJournalApproveCommand(a),
		newJournalRejectCommand(a),
		newJournalListCommand(a),
	)
	return cmd
}

func (a *app) journal() (*journal.Service, error) {
	reg, err := accounts.Load(a.root)
	if err != nil {
		return nil, err
	}
	return journal.NewService(a.root, reg), nil
}

// parseLines turns "ACCOUNT=AMOUNT" flag values into entry lines.
func parseLines(debits, credits []string) ([]journal.Line, error) {
	var lines []journal.Line
	for _, side := range []struct {
		name    string
		values  []string
		isDebit bool
	}{{"debit", debits, true}, {"credit", credits, false}} {
		for _, v := range side.values {
			acct, amt, ok := strings.Cut(v, "=")
			if !ok || acct == "" {
				return nil, fmt.Errorf("--%s %q: want ACCOUNT=AMOUNT", side.name, v)
			}
			d, err := decimal.NewFromString(amt)
			if err != nil {
				return nil, fmt.Errorf("--%s %q: %w", side.name, v, err)
			}
			line := journal.Line{AccountID: acct}
			if side.isDebit {
				line.Debit = d
			} else {
				line.Credit = d
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func newJournalSubmitCommand(a *app) *cobra.Command {
	var date, description, notes string
	var debits, credits []string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a journal entry for approval",
		Example: `  tally journal submit --date 2025-01-15 --description "Hosting" \
    --debit 5020=49.00 --credit 1010=49.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			d, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("parsing --date: %w", err)
			}
			lines, err := parseLines(debits, credits)
			if err != nil {
				return err
			}
			svc, err := a.journal()
			if err != nil {
				return err
			}

			entryID, err := svc.Submit(journal.SubmitParams{
				Date:        d,
				Description: description,
				Lines:       lines,
				SubmittedBy: a.actor,
				Notes:       notes,
			})
			if err != nil {
				return err
			}

			event := audit.NewEvent(a.actor, audit.ActionJournalSubmitted, entryID, description)
			if err := a.recorded(cmd.Context(), event, fmt.Sprintf("journal: submit %s %s", entryID, description)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s (pending)\n", entryID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "entry date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit leg ACCOUNT=AMOUNT (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit leg ACCOUNT=AMOUNT (repeatable)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newJournalApproveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <entry-id>",
		Short: "Approve a pending entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			svc, err := a.journal()
			if err != nil {
				return err
			}
			entry, err := svc.Approve(args[0], a.actor)
			if err != nil {
				return err
			}
			event := audit.NewEvent(a.actor, audit.ActionJournalApproved, entry.ID, "")
			if err := a.recorded(cmd.Context(), event, "journal: approve "+entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Approved %s\n", entry.ID)
			return nil
		},
	}
}

func newJournalRejectCommand(a *app) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <entry-id>",
		Short: "Reject a pending entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			svc, err := a.journal()
			if err != nil {
				return err
			}
			entry, err := svc.Reject(args[0], a.actor, reason)
			if err != nil {
				return err
			}
			event := audit.NewEvent(a.actor, audit.ActionJournalRejected, entry.ID, reason)
			if err := a.recorded(cmd.Context(), event, "journal: reject "+entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s\n", entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the entry is rejected (required)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newJournalListCommand(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			st := model.EntryStatus(strings.ToLower(status))
			if st != "" && !st.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			svc, err := a.journal()
			if err != nil {
				return err
			}
			entries, err := svc.Entries(st)
			if err != nil {
				return err
			}

			if a.jsonOut {
				if entries == nil {
					entries = []model.Entry{}
				}
				return printJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTRY\tDATE\tSTATUS\tAMOUNT\tDESCRIPTION\tSUBMITTED BY")
			for _, e := range entries {
				debit, _ := e.Totals()
				first := e.Legs[0]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, first.Date.Format("2006-01-02"), e.Status, debit.StringFixed(2), first.Description, first.SubmittedBy)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, approved or rejected")
	return cmd
}
