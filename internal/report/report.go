// Package report loads a snapshot of the books and runs the balance,
// statement and ratio computations over it.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/ratios"
	"github.com/tallybooks/tally/internal/statements"
)

// ErrUnknownAccount is returned by Ledger for an account not in the chart.
var ErrUnknownAccount = errors.New("unknown account")

// Source supplies the accounts and transactions a report is built from.
type Source interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
}

// Cache stores built packages by key. Get returns the cache generation it
// read under, empty when the generation is unknown; Set writes into the
// generation it is given.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (hit bool, generation string, err error)
	Set(ctx context.Context, generation, key string, v any) error
}

// Query selects the window and the retained earnings inputs of a report.
type Query struct {
	Window          ledger.Window
	RetainedOpening decimal.Decimal
	Dividends       decimal.Decimal
}

func (q Query) cacheKey() string {
	return fmt.Sprintf("report:%s:%s:%s", q.Window, q.RetainedOpening, q.Dividends)
}

// Package is every report for one query.
type Package struct {
	Window           ledger.Window                 `json:"window"`
	GeneratedAt      time.Time                     `json:"generatedAt"`
	Balances         []ledger.Balance              `json:"balances"`
	TrialBalance     statements.TrialBalanceReport `json:"trialBalance"`
	Income           statements.Income             `json:"incomeStatement"`
	BalanceSheet     statements.Sheet              `json:"balanceSheet"`
	RetainedEarnings statements.RetainedEarnings   `json:"retainedEarnings"`
	Ratios           []ratios.Result               `json:"ratios"`
}

// Service builds report packages.
type Service struct {
	source Source
	cache  Cache
	engine *ratios.Engine
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches built packages.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithEngine replaces the default ratio thresholds.
func WithEngine(e *ratios.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService returns a Service reading from source.
func NewService(source Source, opts ...Option) *Service {
	s := &Service{source: source, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("report")
	return s
}

// Build computes the package for q, serving it from the cache when one is
// configured. The package is written back under the generation read before
// loading, so an invalidation during the build discards it. Cache failures
// are logged and otherwise ignored.
func (s *Service) Build(ctx context.Context, q Query) (*Package, error) {
	key := q.cacheKey()
	var generation string
	if s.cache != nil {
		var cached Package
		hit, gen, err := s.cache.Get(ctx, key, &cached)
		generation = gen
		if err != nil {
			s.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			s.log.Debug("report cache hit", zap.String("key", key))
			return &cached, nil
		}
	}

	accts, txns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pkg := Build(accts, txns, q, s.engine)
	pkg.GeneratedAt = s.now().UTC()

	s.log.Info("report built",
		zap.Stringer("window", q.Window),
		zap.Int("accounts", len(accts)),
		zap.Int("transactions", len(txns)),
		zap.Bool("balanced", pkg.TrialBalance.Balanced()),
	)

	if s.cache != nil && generation != "" {
		if err := s.cache.Set(ctx, generation, key, pkg); err != nil {
			s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return pkg, nil
}

// Build runs the computation core over in-memory accounts and transactions.
// A nil engine uses the default thresholds.
func Build(accts []model.Account, txns []model.Transaction, q Query, engine *ratios.Engine) *Package {
	balances := ledger.ComputeBalances(accts, txns, q.Window)
	income := statements.IncomeStatement(balances)
	sheet := statements.BalanceSheet(balances, q.RetainedOpening, income.NetIncome)

	var results []ratios.Result
	if engine != nil {
		results = engine.Compute(ratios.TotalsFrom(income, sheet))
	} else {
		results = ratios.ComputeRatios(ratios.TotalsFrom(income, sheet))
	}

	return &Package{
		Window:           q.Window,
		Balances:         balances.Sorted(),
		TrialBalance:     statements.TrialBalance(balances),
		Income:           income,
		BalanceSheet:     sheet,
		RetainedEarnings: statements.RetainedEarningsStatement(q.RetainedOpening, income.NetIncome, q.Dividends),
		Ratios:           results,
	}
}

// Accounts returns the chart of accounts ordered by number.
func (s *Service) Accounts(ctx context.Context) ([]model.Account, error) {
	accts, err := s.source.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	sort.SliceStable(accts, func(i, j int) bool { return accts[i].Number < accts[j].Number })
	return accts, nil
}

// Ledger returns the running-balance view of one account.
func (s *Service) Ledger(ctx context.Context, accountID string, w ledger.Window) (*ledger.AccountActivity, error) {
	accts, txns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accts {
		if a.ID == accountID {
			act := ledger.Activity(a, txns, w)
			return &act, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
}

func (s *Service) load(ctx context.Context) ([]model.Account, []model.Transaction, error) {
	accts, err := s.source.ListAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing accounts: %w", err)
	}
	txns, err := s.source.ListTransactions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing transactions: %w", err)
	}
	return accts, txns, nil
}

// Invalidate drops cached packages when the cache supports it.
func (s *Service) Invalidate(ctx context.Context) error {
	inv, ok := s.cache.(interface{ Invalidate(context.Context) error })
	if !ok {
		return nil
	}
	if err := inv.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidating report cache: %w", err)
	}
	return nil
}
