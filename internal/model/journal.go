package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus represents the approval state of a journal entry.
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusApproved EntryStatus = "approved"
	StatusRejected EntryStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Leg is a single row in journal.csv (one side of a double-entry).
type Leg struct {
	EntryID     string          // "YYYY-MM-NNNx" where x = a,b,c...
	Date        time.Time       //nolint:revive // plain field name is clearest
	AccountID   string          //nolint:revive
	Description string          //nolint:revive
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Status      EntryStatus
	SubmittedBy string
	SubmittedAt time.Time
	ReviewedBy  string
	ReviewedAt  time.Time
	Notes       string
}

// EntryGroup returns the base entry ID (without leg suffix).
// "2025-01-001a" -> "2025-01-001"
func (l Leg) EntryGroup() string {
	i := len(l.EntryID)
	for i > 0 && l.EntryID[i-1] >= 'a' && l.EntryID[i-1] <= 'z' {
		i--
	}
	return l.EntryID[:i]
}

// Transaction converts an approved leg into a ledger transaction.
func (l Leg) Transaction() Transaction {
	return Transaction{
		ID:          l.EntryID,
		EntryID:     l.EntryGroup(),
		AccountID:   l.AccountID,
		Description: l.Description,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Date:        l.Date,
		CreatedAt:   l.SubmittedAt,
	}
}

// Entry groups the legs of one journal entry.
type Entry struct {
	ID     string
	Status EntryStatus
	Legs   []Leg
}

// Totals returns the summed debits and credits of the entry.
func (e Entry) Totals() (debit, credit decimal.Decimal) {
	for _, l := range e.Legs {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
