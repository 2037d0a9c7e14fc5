package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/ratios"
	"github.com/tallybooks/tally/internal/report"
)

type reportFlags struct {
	from, to        string
	retainedOpening string
	dividends       string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.from, "from", "", "window start YYYY-MM-DD (default unbounded)")
	cmd.PersistentFlags().StringVar(&f.to, "to", "", "window end YYYY-MM-DD, inclusive (default unbounded)")
	cmd.PersistentFlags().StringVar(&f.retainedOpening, "retained-opening", "", "retained earnings at the window start (default from tally.yaml)")
	cmd.PersistentFlags().StringVar(&f.dividends, "dividends", "", "dividends declared in the window")
}

type section struct {
	use, short string
	json       func(*report.Package) any
	text       func(io.Writer, *report.Package) error
}

var sections = []section{
	{"balances", "Account balances for the window",
		func(p *report.Package) any { return p.Balances }, printBalances},
	{"trial-balance", "Trial balance",
		func(p *report.Package) any { return p.TrialBalance }, printTrialBalance},
	{"income-statement", "Income statement",
		func(p *report.Package) any { return p.Income }, printIncome},
	{"balance-sheet", "Balance sheet at the window end",
		func(p *report.Package) any { return p.BalanceSheet }, printBalanceSheet},
	{"retained-earnings", "Retained earnings statement",
		func(p *report.Package) any { return p.RetainedEarnings }, printRetainedEarnings},
	{"ratios", "Financial ratios with health bands",
		func(p *report.Package) any { return p.Ratios }, printRatios},
}

func newReportCommand(a *app) *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute statements and ratios",
	}
	flags.register(cmd)

	for _, s := range sections {
		cmd.AddCommand(newReportSectionCommand(a, flags, []section{s}, s.use, s.short))
	}
	cmd.AddCommand(newReportSectionCommand(a, flags, sections, "all", "Every report"))
	return cmd
}

func newReportSectionCommand(a *app, flags *reportFlags, secs []section, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			q, err := a.query(flags.from, flags.to, flags.retainedOpening, flags.dividends)
			if err != nil {
				return err
			}
			svc, _, release, err := a.reports(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			pkg, err := svc.Build(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				if len(secs) > 1 {
					return printJSON(out, pkg)
				}
				return printJSON(out, secs[0].json(pkg))
			}
			fmt.Fprintf(out, "Window: %s\n", pkg.Window)
			for _, s := range secs {
				fmt.Fprintln(out)
				if err := s.text(out, pkg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func money(d decimal.Decimal) string {
	return ratios.FormatCurrency(d)
}

func printBalances(w io.Writer, p *report.Package) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NUMBER\tNAME\tBEGINNING\tDEBITS\tCREDITS\tENDING\t")
	for _, b := range p.Balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", b.Account.Number, b.Account.Name,
			money(b.Beginning), money(b.DebitTotal), money(b.CreditTotal), money(b.Ending))
	}
	return tw.Flush()
}

func printTrialBalance(w io.Writer, p *report.Package) error {
	tb := p.TrialBalance
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NUMBER\tNAME\tDEBIT\tCREDIT\t")
	for _, r := range tb.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Number, r.Name, money(r.Debit), money(r.Credit))
	}
	fmt.Fprintf(tw, "\tTotal\t%s\t%s\t\n", money(tb.TotalDebit), money(tb.TotalCredit))
	if err := tw.Flush(); err != nil {
		return err
	}
	if !tb.Balanced() {
		fmt.Fprintf(w, "OUT OF BALANCE by %s\n", money(tb.TotalDebit.Sub(tb.TotalCredit)))
	}
	return nil
}

func printIncome(w io.Writer, p *report.Package) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Revenue\t%s\t\n", money(p.Income.Revenue))
	fmt.Fprintf(tw, "Expenses\t%s\t\n", money(p.Income.Expenses))
	fmt.Fprintf(tw, "Net income\t%s\t\n", money(p.Income.NetIncome))
	return tw.Flush()
}

func printBalanceSheet(w io.Writer, p *report.Package) error {
	s := p.BalanceSheet
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Current assets\t%s\t\n", money(s.CurrentAssets))
	fmt.Fprintf(tw, "  of which inventory\t%s\t\n", money(s.Inventory))
	fmt.Fprintf(tw, "Total assets\t%s\t\n", money(s.TotalAssets))
	fmt.Fprintf(tw, "Total liabilities\t%s\t\n", money(s.TotalLiabilities))
	fmt.Fprintf(tw, "Equity\t%s\t\n", money(s.Equity))
	fmt.Fprintf(tw, "Retained earnings\t%s\t\n", money(s.RetainedEarnings))
	fmt.Fprintf(tw, "Total equity\t%s\t\n", money(s.TotalEquity))
	if err := tw.Flush(); err != nil {
		return err
	}
	if diff := s.Difference(); !diff.IsZero() {
		fmt.Fprintf(w, "Assets differ from liabilities + equity by %s\n", money(diff))
	}
	return nil
}

func printRetainedEarnings(w io.Writer, p *report.Package) error {
	re := p.RetainedEarnings
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Opening\t%s\t\n", money(re.Opening))
	fmt.Fprintf(tw, "Net income\t%s\t\n", money(re.NetIncome))
	fmt.Fprintf(tw, "Dividends\t%s\t\n", money(re.Dividends))
	fmt.Fprintf(tw, "Ending\t%s\t\n", money(re.Ending))
	return tw.Flush()
}

func printRatios(w io.Writer, p *report.Package) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RATIO\tVALUE\tSTATUS\tFORMULA")
	for _, r := range p.Ratios {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Label, r.Formatted, r.Status, r.Formula)
	}
	return tw.Flush()
}
