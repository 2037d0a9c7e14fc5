package statements

import (
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
)

// Sheet is the balance sheet at the close of a window.
//
// Assets and liabilities are not split into current and long-term: every
// asset counts toward CurrentAssets and every liability toward
// CurrentLiabilities.
type Sheet struct {
	CurrentAssets      decimal.Decimal `json:"currentAssets"`
	Inventory          decimal.Decimal `json:"inventory"`
	TotalAssets        decimal.Decimal `json:"totalAssets"`
	CurrentLiabilities decimal.Decimal `json:"currentLiabilities"`
	TotalLiabilities   decimal.Decimal `json:"totalLiabilities"`
	Equity             decimal.Decimal `json:"equity"`
	RetainedEarnings   decimal.Decimal `json:"retainedEarnings"`
	TotalEquity        decimal.Decimal `json:"totalEquity"`
}

// Difference returns TotalAssets - (TotalLiabilities + TotalEquity). It is
// zero for a balanced ledger; BalanceSheet itself never checks it.
func (s Sheet) Difference() decimal.Decimal {
	return s.TotalAssets.Sub(s.TotalLiabilities.Add(s.TotalEquity))
}

// BalanceSheet totals asset, liability and equity ending balances and rolls
// retained earnings forward by the period's net income.
func BalanceSheet(balances ledger.Balances, retainedEarningsOpening, periodNetIncome decimal.Decimal) Sheet {
	var s Sheet
	for _, b := range balances {
		switch b.Account.Type {
		case model.AccountTypeAsset:
			s.TotalAssets = s.TotalAssets.Add(b.Ending)
			s.CurrentAssets = s.CurrentAssets.Add(b.Ending)
			if b.Account.IsInventory() {
				s.Inventory = s.Inventory.Add(b.Ending)
			}
		case model.AccountTypeLiability:
			s.TotalLiabilities = s.TotalLiabilities.Add(b.Ending)
			s.CurrentLiabilities = s.CurrentLiabilities.Add(b.Ending)
		case model.AccountTypeEquity:
			s.Equity = s.Equity.Add(b.Ending)
		}
	}
	s.RetainedEarnings = retainedEarningsOpening.Add(periodNetIncome)
	s.TotalEquity = s.Equity.Add(s.RetainedEarnings)
	return s
}

// RetainedEarnings is the retained earnings statement.
type RetainedEarnings struct {
	Opening   decimal.Decimal `json:"opening"`
	NetIncome decimal.Decimal `json:"netIncome"`
	Dividends decimal.Decimal `json:"dividends"`
	Ending    decimal.Decimal `json:"ending"`
}

// RetainedEarningsStatement computes ending = opening + netIncome - dividends.
func RetainedEarningsStatement(opening, netIncome, dividends decimal.Decimal) RetainedEarnings {
	return RetainedEarnings{
		Opening:   opening,
		NetIncome: netIncome,
		Dividends: dividends,
		Ending:    opening.Add(netIncome).Sub(dividends),
	}
}
