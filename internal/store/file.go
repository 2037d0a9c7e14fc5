package store

import (
	"context"
	"fmt"

	"github.com/tallybooks/tally/internal/accounts"
	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/journal"
	"github.com/tallybooks/tally/internal/model"
)

// FileStore reads a books directory: the chart of accounts CSV and the
// approved legs of the monthly journals.
type FileStore struct {
	root string
}

// NewFileStore returns a FileStore over the books directory at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// ListAccounts returns the chart of accounts.
func (s *FileStore) ListAccounts(_ context.Context) ([]model.Account, error) {
	reg, err := accounts.Load(s.root)
	if err != nil {
		return nil, err
	}
	return reg.All(), nil
}

// ListTransactions returns the approved journal legs.
func (s *FileStore) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	reg, err := accounts.Load(s.root)
	if err != nil {
		return nil, err
	}
	txns, err := journal.NewService(s.root, reg).Transactions()
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return txns, nil
}

// AppendAuditEvent appends to the books audit log.
func (s *FileStore) AppendAuditEvent(_ context.Context, e audit.Event) error {
	return audit.Append(s.root, e)
}
