package commands

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/accounts"
	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

func newAccountsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountsListCommand(a),
		newAccountsAddCommand(a),
		newAccountsDeactivateCommand(a),
		newAccountsValidateCommand(a),
	)
	return cmd
}

func newAccountsListCommand(a *app) *cobra.Command {
	var category string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			repo, err := a.openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(repo)

			all, err := repo.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			list := make([]model.Account, 0, len(all))
			for _, acct := range all {
				if category != "" && string(acct.Type) != strings.ToLower(category) {
					continue
				}
				if !acct.Active && !inactive {
					continue
				}
				list = append(list, acct)
			}
			sort.SliceStable(list, func(i, j int) bool { return list[i].Number < list[j].Number })

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tNAME\tCATEGORY\tSUBCATEGORY\tSIDE\tACTIVE")
			for _, acct := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", acct.Number, acct.Name, acct.Type, acct.Subcategory, acct.Side(), acct.Active)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list accounts of this category")
	cmd.Flags().BoolVar(&inactive, "all", false, "include inactive accounts")
	return cmd
}

func newAccountsAddCommand(a *app) *cobra.Command {
	var acct model.Account
	var category, normalSide, initial string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			reg, err := accounts.Load(a.root)
			if err != nil {
				return err
			}

			acct.Type = model.AccountType(category)
			acct.NormalSide = model.NormalSide(strings.ToLower(normalSide))
			acct.Active = true
			if initial != "" {
				if acct.InitialBalance, err = decimal.NewFromString(initial); err != nil {
					return fmt.Errorf("parsing --initial-balance: %w", err)
				}
			}

			added, err := reg.Add(acct)
			if err != nil {
				return err
			}
			if err := reg.Save(a.root); err != nil {
				return err
			}

			event := audit.NewEvent(a.actor, audit.ActionAccountCreated, added.ID, added.Name)
			if err := a.recorded(cmd.Context(), event, fmt.Sprintf("accounts: add %s %s", added.Number, added.Name)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s %s\n", added.Number, added.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&acct.Number, "number", "", "account number (required)")
	cmd.Flags().StringVar(&acct.Name, "name", "", "account name (required)")
	cmd.Flags().StringVar(&category, "category", "", "asset, liability, equity, revenue or expense (required)")
	cmd.Flags().StringVar(&acct.ID, "id", "", "account ID (defaults to the number)")
	cmd.Flags().StringVar(&acct.Subcategory, "subcategory", "", "subcategory")
	cmd.Flags().StringVar(&normalSide, "normal-side", "", "debit or credit (defaults by category)")
	cmd.Flags().StringVar(&initial, "initial-balance", "", "opening balance")
	cmd.Flags().StringVar(&acct.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newAccountsDeactivateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <account-id>",
		Short: "Stop accepting new journal legs for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			reg, err := accounts.Load(a.root)
			if err != nil {
				return err
			}
			if err := reg.Deactivate(args[0]); err != nil {
				return err
			}
			if err := reg.Save(a.root); err != nil {
				return err
			}

			event := audit.NewEvent(a.actor, audit.ActionAccountDeactivated, args[0], "")
			if err := a.recorded(cmd.Context(), event, "accounts: deactivate "+args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated account %s\n", args[0])
			return nil
		},
	}
}

func newAccountsValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			reg, err := accounts.Load(a.root)
			if err != nil {
				return err
			}
			verrs := accounts.Validate(reg.All())
			for _, ve := range verrs {
				fmt.Fprintln(cmd.OutOrStdout(), ve.Error())
			}
			if len(verrs) > 0 {
				return fmt.Errorf("chart of accounts has %d problem(s)", len(verrs))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart of accounts OK (%d accounts)\n", len(reg.All()))
			return nil
		},
	}
}
