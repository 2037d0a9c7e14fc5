// Package store reads account and transaction snapshots for the reporting
// core and records audit events, over interchangeable backends.
package store

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/model"
)

// Repository is the persistence boundary of the reporting core.
type Repository interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	AppendAuditEvent(ctx context.Context, e audit.Event) error
}

// Open returns the repository selected by the storage config. root is the
// books directory; relative snapshot paths resolve against it.
func Open(ctx context.Context, cfg config.StorageConfig, root string) (Repository, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(root), nil
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL)
	case config.DriverSnapshot:
		path := cfg.SnapshotPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		return LoadSnapshot(path, root)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close releases the repository's resources if it holds any.
func Close(repo Repository) error {
	if c, ok := repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
