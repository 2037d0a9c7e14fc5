package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Epoch is the effective date of a transaction with neither a date nor a
// creation timestamp. Such transactions land in every window without a
// lower bound.
var Epoch = time.Unix(0, 0).UTC()

// Transaction is one posting against one account in the ledger.
type Transaction struct {
	ID          string          `json:"id"`
	EntryID     string          `json:"entryId,omitempty"`
	AccountID   string          `json:"accountId"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Date        time.Time       `json:"date"`      // zero if absent
	CreatedAt   time.Time       `json:"createdAt"` // zero if absent
}

// EffectiveDate resolves the date a transaction is booked on: the explicit
// date, else the creation timestamp, else Epoch.
func (t Transaction) EffectiveDate() time.Time {
	if !t.Date.IsZero() {
		return t.Date
	}
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	return Epoch
}
