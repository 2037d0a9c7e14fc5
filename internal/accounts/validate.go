package accounts

import (
	"fmt"
	"strings"

	"github.com/tallybooks/tally/internal/model"
)

// NumberPrefixes maps each category to the leading digits its account
// numbers may start with.
var NumberPrefixes = map[model.AccountType]string{
	model.AccountTypeAsset:     "1",
	model.AccountTypeLiability: "2",
	model.AccountTypeEquity:    "3",
	model.AccountTypeRevenue:   "4",
	model.AccountTypeExpense:   "56789",
}

// ValidationError describes a single chart-of-accounts invariant violation.
type ValidationError struct {
	Invariant   int
	AccountID   string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.AccountID, e.Description)
}

// Validate enforces 7 invariants on a chart of accounts.
func Validate(accounts []model.Account) []ValidationError {
	var errs []ValidationError
	add := func(inv int, a model.Account, format string, args ...any) {
		errs = append(errs, ValidationError{Invariant: inv, AccountID: a.ID, Description: fmt.Sprintf(format, args...)})
	}

	ids := make(map[string]bool, len(accounts))
	names := make(map[string]string, len(accounts))
	numbers := make(map[string]string, len(accounts))

	for _, a := range accounts {
		// Invariant 1: IDs present and unique.
		switch {
		case a.ID == "":
			add(1, a, "account has no ID")
		case ids[a.ID]:
			add(1, a, "duplicate account ID")
		}
		ids[a.ID] = true

		// Invariant 2: names present and unique, ignoring case.
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			add(2, a, "account has no name")
		} else if other, ok := names[name]; ok {
			add(2, a, "name %q already used by %s", a.Name, other)
		} else {
			names[name] = a.ID
		}

		// Invariant 3: numbers unique.
		if other, ok := numbers[a.Number]; ok && a.Number != "" {
			add(3, a, "number %s already used by %s", a.Number, other)
		} else {
			numbers[a.Number] = a.ID
		}

		// Invariant 4: numbers are digit strings.
		if !isDigits(a.Number) {
			add(4, a, "number %q must be digits only", a.Number)
		}

		// Invariant 5: known category.
		if !a.Type.Valid() {
			add(5, a, "unknown category %q", a.Type)
			continue
		}

		// Invariant 6: number prefix matches the category.
		if a.Number != "" && !strings.ContainsRune(NumberPrefixes[a.Type], rune(a.Number[0])) {
			add(6, a, "number %s does not start with %s for %s accounts", a.Number, prefixList(a.Type), a.Type)
		}

		// Invariant 7: normal side, if set, is debit or credit.
		if a.NormalSide != "" && a.NormalSide != model.NormalSideDebit && a.NormalSide != model.NormalSideCredit {
			add(7, a, "unknown normal side %q", a.NormalSide)
		}
	}
	return errs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func prefixList(t model.AccountType) string {
	p := NumberPrefixes[t]
	if len(p) == 1 {
		return p
	}
	return fmt.Sprintf("%c-%c", p[0], p[len(p)-1])
}
