package ledger

import "github.com/tallybooks/tally/internal/model"

// RawTransaction is a ledger transaction document as exported from a
// document store.
type RawTransaction struct {
	ID          model.FlexString `json:"id"`
	EntryID     model.FlexString `json:"entryId"`
	AccountID   model.FlexString `json:"accountId"`
	Description model.FlexString `json:"description"`
	Debit       model.FlexAmount `json:"debit"`
	Credit      model.FlexAmount `json:"credit"`
	Date        model.FlexTime   `json:"date"`
	CreatedAt   model.FlexTime   `json:"createdAt"`
}

// NormalizeTransactions converts raw documents into transactions. Missing
// or unreadable amounts become zero and unreadable dates become absent, so
// the effective-date fallback applies.
func NormalizeTransactions(raw []RawTransaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.Transaction{
			ID:          string(r.ID),
			EntryID:     string(r.EntryID),
			AccountID:   string(r.AccountID),
			Description: string(r.Description),
			Debit:       r.Debit.Decimal,
			Credit:      r.Credit.Decimal,
			Date:        r.Date.Time,
			CreatedAt:   r.CreatedAt.Time,
		})
	}
	return out
}
