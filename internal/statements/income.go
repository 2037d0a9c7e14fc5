// Package statements derives financial statements and the trial balance
// from accumulated account balances.
package statements

import (
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
)

// Income is the income statement for a window.
type Income struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

// IncomeStatement sums ending balances of revenue and expense accounts.
// Other categories are ignored.
func IncomeStatement(balances ledger.Balances) Income {
	var inc Income
	for _, b := range balances {
		switch b.Account.Type {
		case model.AccountTypeRevenue:
			inc.Revenue = inc.Revenue.Add(b.Ending)
		case model.AccountTypeExpense:
			inc.Expenses = inc.Expenses.Add(b.Ending)
		}
	}
	inc.NetIncome = inc.Revenue.Sub(inc.Expenses)
	return inc
}
