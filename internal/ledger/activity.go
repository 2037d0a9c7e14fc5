package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

// ActivityLine is one transaction in an account ledger with the balance
// after it.
type ActivityLine struct {
	TransactionID string          `json:"transactionId"`
	EntryID       string          `json:"entryId,omitempty"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// AccountActivity is the running-balance ledger of a single account.
type AccountActivity struct {
	Account model.Account   `json:"account"`
	Window  Window          `json:"window"`
	Opening decimal.Decimal `json:"opening"`
	Lines   []ActivityLine  `json:"lines"`
	Closing decimal.Decimal `json:"closing"`
}

// Activity lists the in-window transactions of one account ordered by
// effective date, then ID, with a running balance. Opening is the initial
// balance, so Closing matches the Ending that ComputeBalances reports for
// the same inputs.
func Activity(acct model.Account, transactions []model.Transaction, w Window) AccountActivity {
	var mine []model.Transaction
	for _, tx := range transactions {
		if tx.AccountID == acct.ID && w.Contains(tx.EffectiveDate()) {
			mine = append(mine, tx)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		di, dj := mine[i].EffectiveDate(), mine[j].EffectiveDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return mine[i].ID < mine[j].ID
	})

	side := acct.Side()
	running := acct.InitialBalance
	lines := make([]ActivityLine, 0, len(mine))
	for _, tx := range mine {
		running = running.Add(signed(side, tx))
		lines = append(lines, ActivityLine{
			TransactionID: tx.ID,
			EntryID:       tx.EntryID,
			Date:          tx.EffectiveDate(),
			Description:   tx.Description,
			Debit:         tx.Debit,
			Credit:        tx.Credit,
			Balance:       running,
		})
	}

	return AccountActivity{
		Account: acct,
		Window:  w,
		Opening: acct.InitialBalance,
		Lines:   lines,
		Closing: running,
	}
}
