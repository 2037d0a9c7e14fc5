package store

import (
	"context"
	"sync"

	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/model"
)

// Memory is an in-process repository.
type Memory struct {
	mu           sync.RWMutex
	accounts     []model.Account
	transactions []model.Transaction
	events       []audit.Event
}

// NewMemory returns a Memory holding copies of the given records.
func NewMemory(accts []model.Account, txns []model.Transaction) *Memory {
	return &Memory{
		accounts:     append([]model.Account(nil), accts...),
		transactions: append([]model.Transaction(nil), txns...),
	}
}

// ListAccounts returns a copy of the stored accounts.
func (m *Memory) ListAccounts(_ context.Context) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Account(nil), m.accounts...), nil
}

// ListTransactions returns a copy of the stored transactions.
func (m *Memory) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Transaction(nil), m.transactions...), nil
}

// AppendAuditEvent records the event in memory.
func (m *Memory) AppendAuditEvent(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Replace swaps the stored accounts and transactions.
func (m *Memory) Replace(accts []model.Account, txns []model.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append([]model.Account(nil), accts...)
	m.transactions = append([]model.Transaction(nil), txns...)
}

// Events returns the audit events appended so far.
func (m *Memory) Events() []audit.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]audit.Event(nil), m.events...)
}
