package statements

import (
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
)

// TrialBalanceRow is one account restated into debit and credit columns.
// At most one of Debit and Credit is non-zero.
type TrialBalanceRow struct {
	AccountID string          `json:"accountId"`
	Number    string          `json:"number"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalanceReport holds the rows and their grand totals.
type TrialBalanceReport struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// Balanced reports whether total debits equal total credits.
func (r TrialBalanceReport) Balanced() bool {
	return r.TotalDebit.Equal(r.TotalCredit)
}

// TrialBalance places each ending balance in the column of the account's
// normal side, or in the opposite column with its magnitude when negative.
// Rows are ordered by account number.
func TrialBalance(balances ledger.Balances) TrialBalanceReport {
	sorted := balances.Sorted()
	report := TrialBalanceReport{Rows: make([]TrialBalanceRow, 0, len(sorted))}

	for _, b := range sorted {
		row := TrialBalanceRow{
			AccountID: b.Account.ID,
			Number:    b.Account.Number,
			Name:      b.Account.Name,
			Type:      string(b.Account.Type),
		}

		onNormalSide := !b.Ending.IsNegative()
		debitNormal := b.Account.Side() == model.NormalSideDebit
		if onNormalSide == debitNormal {
			row.Debit = b.Ending.Abs()
		} else {
			row.Credit = b.Ending.Abs()
		}

		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, row)
	}
	return report
}
