package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tallybooks/tally/internal/model"
)

// ErrNotFound is returned when an account ID is not in the chart.
var ErrNotFound = errors.New("account not found")

// chartPath is the chart of accounts relative to a books root.
const chartPath = "accounts/chart-of-accounts.csv"

// Registry provides in-memory lookup over the chart of accounts.
type Registry struct {
	accounts []model.Account
	byID     map[string]int
}

// NewRegistry creates a Registry from a slice of accounts. Later duplicates
// of an ID shadow earlier ones in lookups.
func NewRegistry(accounts []model.Account) *Registry {
	r := &Registry{accounts: accounts}
	r.reindex()
	return r
}

func (r *Registry) reindex() {
	r.byID = make(map[string]int, len(r.accounts))
	for i, a := range r.accounts {
		r.byID[a.ID] = i
	}
}

// Load reads the chart of accounts from a books root and returns a Registry.
func Load(root string) (*Registry, error) {
	f, err := os.Open(filepath.Join(root, chartPath))
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewRegistry(accts), nil
}

// All returns all accounts.
func (r *Registry) All() []model.Account {
	return r.accounts
}

// Get returns an account by ID.
func (r *Registry) Get(id string) (model.Account, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Account{}, false
	}
	return r.accounts[i], true
}

// Exists reports whether an account ID exists.
func (r *Registry) Exists(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// ByNumber returns the account with the given number.
func (r *Registry) ByNumber(number string) (model.Account, bool) {
	for _, a := range r.accounts {
		if a.Number == number {
			return a, true
		}
	}
	return model.Account{}, false
}

// ByType returns all accounts of the given type.
func (r *Registry) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range r.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Add appends an account after validating the resulting chart. An empty ID
// defaults to the account number and an empty normal side to the category
// default.
func (r *Registry) Add(acct model.Account) (model.Account, error) {
	acct.Type = model.AccountType(strings.ToLower(string(acct.Type)))
	if acct.ID == "" {
		acct.ID = acct.Number
	}
	if acct.NormalSide == "" {
		acct.NormalSide = acct.Type.DefaultNormalSide()
	}

	next := append(append([]model.Account(nil), r.accounts...), acct)
	if verrs := Validate(next); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.Account{}, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	r.accounts = next
	r.reindex()
	return acct, nil
}

// Deactivate marks an account inactive. Inactive accounts keep their
// history but accept no new journal legs.
func (r *Registry) Deactivate(id string) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.accounts[i].Active = false
	return nil
}

// Save writes the chart of accounts, ordered by number, under a books root.
func (r *Registry) Save(root string) error {
	dir := filepath.Join(root, filepath.Dir(chartPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	sorted := append([]model.Account(nil), r.accounts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	f, err := os.Create(filepath.Join(root, chartPath))
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, sorted); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
