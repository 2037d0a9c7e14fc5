package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/ledger"
)

func newLedgerCommand(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "ledger <account-id>",
		Short: "Show an account's transactions with a running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			w, err := ledger.ParseWindow(from, to)
			if err != nil {
				return err
			}
			svc, _, release, err := a.reports(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			act, err := svc.Ledger(cmd.Context(), args[0], w)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), act)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s, normal side %s)\nWindow: %s\n\n",
				act.Account.Number, act.Account.Name, act.Account.Type, act.Account.Side(), act.Window)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tENTRY\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
			fmt.Fprintf(tw, "\t\tOpening balance\t\t\t%s\n", money(act.Opening))
			for _, l := range act.Lines {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					l.Date.Format("2006-01-02"), l.EntryID, l.Description, money(l.Debit), money(l.Credit), money(l.Balance))
			}
			fmt.Fprintf(tw, "\t\tClosing balance\t\t\t%s\n", money(act.Closing))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "window end YYYY-MM-DD, inclusive")
	return cmd
}
