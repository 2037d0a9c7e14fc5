package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountLookup resolves account IDs against the chart of accounts.
type AccountLookup interface {
	Get(id string) (model.Account, bool)
}

var hundred = decimal.NewFromInt(100)

// ValidateLegs enforces 8 invariants on the legs of one month.
func ValidateLegs(legs []model.Leg, accounts AccountLookup, year, month int) []ValidationError {
	var errs []ValidationError

	groups := make(map[string][]model.Leg)
	var groupOrder []string
	for _, leg := range legs {
		g := leg.EntryGroup()
		if _, seen := groups[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		groups[g] = append(groups[g], leg)
	}

	for _, g := range groupOrder {
		groupLegs := groups[g]

		// Invariant 1: debits equal credits per entry.
		totalDebit := decimal.Zero
		totalCredit := decimal.Zero
		for _, leg := range groupLegs {
			totalDebit = totalDebit.Add(leg.Debit)
			totalCredit = totalCredit.Add(leg.Credit)
		}
		if !totalDebit.Equal(totalCredit) {
			errs = append(errs, ValidationError{
				Invariant:   1,
				EntryID:     g,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
			})
		}

		// Invariant 8: at least two legs.
		if len(groupLegs) < 2 {
			errs = append(errs, ValidationError{
				Invariant:   8,
				EntryID:     g,
				Description: fmt.Sprintf("entry has %d leg, need at least 2", len(groupLegs)),
			})
		}
	}

	for _, leg := range legs {
		// Invariant 2: exactly one of debit/credit per leg.
		if leg.Debit.IsZero() == leg.Credit.IsZero() {
			errs = append(errs, ValidationError{
				Invariant:   2,
				EntryID:     leg.EntryID,
				Description: "leg must have exactly one of debit or credit",
			})
		}

		// Invariant 3: account exists and is active. Legs that were
		// already decided keep their account even if it is later
		// deactivated.
		acct, ok := accounts.Get(leg.AccountID)
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     leg.EntryID,
				Description: fmt.Sprintf("unknown account %q", leg.AccountID),
			})
		case !acct.Active && leg.Status == model.StatusPending:
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     leg.EntryID,
				Description: fmt.Sprintf("account %q is inactive", leg.AccountID),
			})
		}

		// Invariant 4: date within month.
		if leg.Date.Year() != year || int(leg.Date.Month()) != month {
			errs = append(errs, ValidationError{
				Invariant:   4,
				EntryID:     leg.EntryID,
				Description: fmt.Sprintf("date %s not in %04d-%02d", leg.Date.Format(dateFormat), year, month),
			})
		}

		for _, side := range []struct {
			name   string
			amount decimal.Decimal
		}{{"debit", leg.Debit}, {"credit", leg.Credit}} {
			// Invariant 6: no more than 2 decimal places.
			scaled := side.amount.Mul(hundred)
			if !scaled.Equal(scaled.Truncate(0)) {
				errs = append(errs, ValidationError{
					Invariant:   6,
					EntryID:     leg.EntryID,
					Description: fmt.Sprintf("%s %s has more than 2 decimal places", side.name, side.amount),
				})
			}
			// Invariant 7: amounts are not negative.
			if side.amount.IsNegative() {
				errs = append(errs, ValidationError{
					Invariant:   7,
					EntryID:     leg.EntryID,
					Description: fmt.Sprintf("%s %s is negative", side.name, side.amount),
				})
			}
		}
	}

	// Invariant 5: sequence numbers are contiguous 1..N.
	seqSeen := make(map[int]bool)
	for _, g := range groupOrder {
		e, err := id.Parse(g)
		if err != nil {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     g,
				Description: fmt.Sprintf("invalid entry ID: %v", err),
			})
			continue
		}
		seqSeen[e.Seq] = true
	}
	for i := 1; i <= len(seqSeen); i++ {
		if !seqSeen[i] {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     fmt.Sprintf("seq %d", i),
				Description: fmt.Sprintf("missing sequence %d in 1..%d", i, len(seqSeen)),
			})
		}
	}

	return errs
}
