// Package ledger folds dated ledger transactions into per-account balances.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

// Balance is the activity of one account over a window.
type Balance struct {
	Account     model.Account   `json:"account"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
	Beginning   decimal.Decimal `json:"beginning"`
	Ending      decimal.Decimal `json:"ending"`
}

// Balances maps account ID to its balance record.
type Balances map[string]Balance

// Sorted returns the balances ordered by account number, then ID.
func (b Balances) Sorted() []Balance {
	out := make([]Balance, 0, len(b))
	for _, bal := range b {
		out = append(out, bal)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account.Number != out[j].Account.Number {
			return out[i].Account.Number < out[j].Account.Number
		}
		return out[i].Account.ID < out[j].Account.ID
	})
	return out
}

// ComputeBalances produces one balance per account for the window.
//
// Every account starts with beginning and ending balance equal to its initial
// balance. Each transaction whose effective date is inside the window and
// whose account is known adds to the debit and credit totals and moves the
// ending balance toward the account's normal side. Transactions for unknown
// accounts are dropped without error. The result does not depend on the
// order of transactions.
func ComputeBalances(accounts []model.Account, transactions []model.Transaction, w Window) Balances {
	work := make(map[string]*Balance, len(accounts))
	for _, a := range accounts {
		work[a.ID] = &Balance{
			Account:   a,
			Beginning: a.InitialBalance,
			Ending:    a.InitialBalance,
		}
	}

	for _, tx := range transactions {
		if !w.Contains(tx.EffectiveDate()) {
			continue
		}
		bal, ok := work[tx.AccountID]
		if !ok {
			continue
		}
		bal.DebitTotal = bal.DebitTotal.Add(tx.Debit)
		bal.CreditTotal = bal.CreditTotal.Add(tx.Credit)
		bal.Ending = bal.Ending.Add(signed(bal.Account.Side(), tx))
	}

	out := make(Balances, len(work))
	for id, bal := range work {
		out[id] = *bal
	}
	return out
}

// signed returns the transaction's effect on an account with the given
// normal side.
func signed(side model.NormalSide, tx model.Transaction) decimal.Decimal {
	if side == model.NormalSideDebit {
		return tx.Debit.Sub(tx.Credit)
	}
	return tx.Credit.Sub(tx.Debit)
}
