package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/model"
)

// Amounts cross the wire as text so no numeric codec is involved.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		subcategory TEXT NOT NULL DEFAULT '',
		normal_side TEXT NOT NULL,
		initial_balance NUMERIC NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS ledger_transactions (
		id TEXT PRIMARY KEY,
		entry_id TEXT NOT NULL DEFAULT '',
		account_id TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		debit NUMERIC NOT NULL DEFAULT 0,
		credit NUMERIC NOT NULL DEFAULT 0,
		date TIMESTAMPTZ,
		created_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_transactions_account ON ledger_transactions(account_id);

	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT ''
	);
`

// Postgres is a read replica of the books in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Ping checks the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Migrate creates the schema if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Sync replaces the replica's accounts and transactions in one database
// transaction.
func (p *Postgres) Sync(ctx context.Context, accts []model.Account, txns []model.Transaction) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning sync: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_transactions`); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range accts {
		batch.Queue(`
			INSERT INTO accounts (id, number, name, category, subcategory, normal_side, initial_balance, active, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9)`,
			a.ID, a.Number, a.Name, string(a.Type), a.Subcategory, string(a.Side()),
			a.InitialBalance.String(), a.Active, a.Description,
		)
	}
	for _, t := range txns {
		batch.Queue(`
			INSERT INTO ledger_transactions (id, entry_id, account_id, description, debit, credit, date, created_at)
			VALUES ($1, $2, $3, $4, $5::text::numeric, $6::text::numeric, $7, $8)`,
			t.ID, t.EntryID, t.AccountID, t.Description,
			t.Debit.String(), t.Credit.String(), nullTime(t.Date), nullTime(t.CreatedAt),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing sync: %w", err)
	}
	return nil
}

// ListAccounts returns the replicated chart ordered by number.
func (p *Postgres) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, number, name, category, subcategory, normal_side, initial_balance::text, active, description
		FROM accounts
		ORDER BY number, id`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var (
			a                 model.Account
			category, side    string
			initialBalanceStr string
		)
		if err := rows.Scan(&a.ID, &a.Number, &a.Name, &category, &a.Subcategory, &side, &initialBalanceStr, &a.Active, &a.Description); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Type = model.AccountType(category)
		a.NormalSide = model.NormalSide(side)
		if a.InitialBalance, err = decimal.NewFromString(initialBalanceStr); err != nil {
			return nil, fmt.Errorf("account %s initial balance %q: %w", a.ID, initialBalanceStr, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return out, nil
}

// ListTransactions returns the replicated ledger transactions.
func (p *Postgres) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, entry_id, account_id, description, debit::text, credit::text, date, created_at
		FROM ledger_transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t               model.Transaction
			debit, credit   string
			date, createdAt *time.Time
		)
		if err := rows.Scan(&t.ID, &t.EntryID, &t.AccountID, &t.Description, &debit, &credit, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("transaction %s debit %q: %w", t.ID, debit, err)
		}
		if t.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("transaction %s credit %q: %w", t.ID, credit, err)
		}
		if date != nil {
			t.Date = date.UTC()
		}
		if createdAt != nil {
			t.CreatedAt = createdAt.UTC()
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}
	return out, nil
}

// AppendAuditEvent inserts an audit event. Re-inserting an ID is a no-op.
func (p *Postgres) AppendAuditEvent(ctx context.Context, e audit.Event) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO audit_events (id, occurred_at, actor, action, subject, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Timestamp, e.Actor, e.Action, e.Subject, e.Details,
	)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

// AuditEvents returns the stored audit events, oldest first.
func (p *Postgres) AuditEvents(ctx context.Context) ([]audit.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, occurred_at, actor, action, subject, details
		FROM audit_events
		ORDER BY occurred_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Event, error) {
		var e audit.Event
		err := row.Scan(&e.ID, &e.Timestamp, &e.Actor, &e.Action, &e.Subject, &e.Details)
		e.Timestamp = e.Timestamp.UTC()
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("reading audit events: %w", err)
	}
	return events, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
