package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tallybooks/tally/internal/accounts"
	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/ledger"
)

// SnapshotDocument is a document-store export of the books. Field values
// are loosely typed and normalized on load.
type SnapshotDocument struct {
	Accounts     []accounts.RawAccount   `json:"accounts"`
	Transactions []ledger.RawTransaction `json:"transactions"`
}

// Snapshot serves a normalized export from memory. Audit events go to the
// audit log of the books directory.
type Snapshot struct {
	*Memory
	auditRoot string
}

// LoadSnapshot reads and normalizes the export at path.
func LoadSnapshot(path, auditRoot string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var doc SnapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &Snapshot{
		Memory:    NewMemory(accounts.Normalize(doc.Accounts), ledger.NormalizeTransactions(doc.Transactions)),
		auditRoot: auditRoot,
	}, nil
}

// AppendAuditEvent appends to the books audit log.
func (s *Snapshot) AppendAuditEvent(_ context.Context, e audit.Event) error {
	return audit.Append(s.auditRoot, e)
}
