package report

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/ratios"
	"github.com/tallybooks/tally/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(m, d int) time.Time {
	return time.Date(2025, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func chart() []model.Account {
	return []model.Account{
		{ID: "1010", Number: "1010", Name: "Cash", Type: model.AccountTypeAsset, Active: true},
		{ID: "2010", Number: "2010", Name: "Accounts Payable", Type: model.AccountTypeLiability, Active: true},
		{ID: "3010", Number: "3010", Name: "Owner Capital", Type: model.AccountTypeEquity, Active: true},
		{ID: "4010", Number: "4010", Name: "Sales", Type: model.AccountTypeRevenue, Active: true},
		{ID: "5020", Number: "5020", Name: "Software", Type: model.AccountTypeExpense, Active: true},
	}
}

func txns() []model.Transaction {
	return []model.Transaction{
		{ID: "t1a", AccountID: "1010", Debit: dec("5000"), Date: day(1, 2)},
		{ID: "t1b", AccountID: "3010", Credit: dec("5000"), Date: day(1, 2)},
		{ID: "t2a", AccountID: "1010", Debit: dec("900"), Date: day(1, 10)},
		{ID: "t2b", AccountID: "4010", Credit: dec("900"), Date: day(1, 10)},
		{ID: "t3a", AccountID: "5020", Debit: dec("400"), Date: day(1, 15)},
		{ID: "t3b", AccountID: "1010", Credit: dec("400"), Date: day(1, 15)},
		{ID: "t4a", AccountID: "5020", Debit: dec("100"), Date: day(2, 1)},
		{ID: "t4b", AccountID: "2010", Credit: dec("100"), Date: day(2, 1)},
	}
}

type memCache struct {
	data   map[string][]byte
	gen    int
	genErr error
	getErr error
	setErr error
	sets   int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, string, error) {
	if c.genErr != nil {
		return false, "", c.genErr
	}
	gen := strconv.Itoa(c.gen)
	if c.getErr != nil {
		return false, gen, c.getErr
	}
	raw, ok := c.data[gen+":"+key]
	if !ok {
		return false, gen, nil
	}
	return true, gen, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, generation, key string, v any) error {
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[generation+":"+key] = raw
	c.sets++
	return nil
}

func findRatio(t *testing.T, results []ratios.Result, key string) ratios.Result {
	t.Helper()
	for _, r := range results {
		if r.Key == key {
			return r
		}
	}
	t.Fatalf("ratio %s missing", key)
	return ratios.Result{}
}

func TestBuild_January(t *testing.T) {
	w, err := ledger.ParseWindow("2025-01-01", "2025-01-31")
	require.NoError(t, err)

	pkg := Build(chart(), txns(), Query{Window: w}, nil)
	require.Len(t, pkg.Balances, 5)
	assert.Equal(t, "1010", pkg.Balances[0].Account.ID)
	assert.True(t, pkg.Balances[0].Ending.Equal(dec("5500")))

	assert.True(t, pkg.Income.Revenue.Equal(dec("900")))
	assert.True(t, pkg.Income.Expenses.Equal(dec("400")))
	assert.True(t, pkg.Income.NetIncome.Equal(dec("500")))

	assert.True(t, pkg.BalanceSheet.TotalAssets.Equal(dec("5500")))
	assert.True(t, pkg.BalanceSheet.TotalEquity.Equal(dec("5500")))
	assert.True(t, pkg.BalanceSheet.Difference().IsZero())
	assert.True(t, pkg.TrialBalance.Balanced())

	cr := findRatio(t, pkg.Ratios, ratios.KeyCurrentRatio)
	assert.Equal(t, "N/A", cr.Formatted)
	assert.Equal(t, ratios.StatusWarning, cr.Status)
}

func TestBuild_RetainedEarningsInputs(t *testing.T) {
	q := Query{RetainedOpening: dec("1000"), Dividends: dec("150")}
	pkg := Build(chart(), txns(), q, nil)

	assert.True(t, pkg.Income.NetIncome.Equal(dec("400")))
	assert.True(t, pkg.RetainedEarnings.Opening.Equal(dec("1000")))
	assert.True(t, pkg.RetainedEarnings.Ending.Equal(dec("1250")))
	assert.True(t, pkg.BalanceSheet.RetainedEarnings.Equal(dec("1400")))

	cr := findRatio(t, pkg.Ratios, ratios.KeyCurrentRatio)
	assert.Equal(t, "55.00x", cr.Formatted)
	assert.Equal(t, ratios.StatusGood, cr.Status)
}

func TestService_BuildCaches(t *testing.T) {
	repo := store.NewMemory(chart(), txns())
	cache := newMemCache()
	svc := NewService(repo, WithCache(cache))

	first, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.False(t, first.GeneratedAt.IsZero())

	// a cache hit does not see the replaced books
	repo.Replace(chart(), nil)
	second, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.True(t, second.Income.NetIncome.Equal(first.Income.NetIncome))
	assert.Equal(t, first.Ratios[0].Formatted, second.Ratios[0].Formatted)

	// a different query misses
	other, err := svc.Build(context.Background(), Query{Dividends: dec("1")})
	require.NoError(t, err)
	assert.True(t, other.Income.NetIncome.IsZero())
	assert.Equal(t, 2, cache.sets)
}

func TestService_CacheErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")

	svc := NewService(store.NewMemory(chart(), txns()), WithCache(cache), WithLogger(zap.New(core)))
	pkg, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.True(t, pkg.Income.NetIncome.Equal(dec("400")))

	assert.Equal(t, 1, logs.FilterMessage("report cache read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("report cache write failed").Len())
}

func TestService_UnknownGenerationSkipsWrite(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cache := newMemCache()
	cache.genErr = errors.New("connection refused")

	svc := NewService(store.NewMemory(chart(), txns()), WithCache(cache), WithLogger(zap.New(core)))
	_, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("report cache read failed").Len())
	assert.Zero(t, cache.sets)
	assert.Empty(t, cache.data)
}

func TestService_WithEngine(t *testing.T) {
	engine, err := ratios.NewEngine(map[string]ratios.Thresholds{
		ratios.KeyCurrentRatio: {Good: dec("100"), Warning: dec("60")},
	})
	require.NoError(t, err)

	svc := NewService(store.NewMemory(chart(), txns()), WithEngine(engine))
	pkg, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, ratios.StatusBad, findRatio(t, pkg.Ratios, ratios.KeyCurrentRatio).Status)
}

func TestService_Ledger(t *testing.T) {
	svc := NewService(store.NewMemory(chart(), txns()))

	act, err := svc.Ledger(context.Background(), "1010", ledger.Window{})
	require.NoError(t, err)
	require.Len(t, act.Lines, 3)
	assert.True(t, act.Lines[1].Balance.Equal(dec("5900")))
	assert.True(t, act.Closing.Equal(dec("5500")))

	_, err = svc.Ledger(context.Background(), "9999", ledger.Window{})
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

type failingSource struct{}

func (failingSource) ListAccounts(context.Context) ([]model.Account, error) {
	return nil, errors.New("disk gone")
}

func (failingSource) ListTransactions(context.Context) ([]model.Transaction, error) {
	return nil, nil
}

func TestService_SourceError(t *testing.T) {
	svc := NewService(failingSource{})
	_, err := svc.Build(context.Background(), Query{})
	assert.ErrorContains(t, err, "listing accounts: disk gone")

	_, err = svc.Accounts(context.Background())
	assert.Error(t, err)
}

type invalidatingCache struct {
	*memCache
	invalidated int
}

func (c *invalidatingCache) Invalidate(context.Context) error {
	c.invalidated++
	c.gen++
	return nil
}

// hookSource runs onLoad once, after the transactions have been read.
type hookSource struct {
	Source
	onLoad func()
}

func (h *hookSource) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	out, err := h.Source.ListTransactions(ctx)
	if h.onLoad != nil {
		fn := h.onLoad
		h.onLoad = nil
		fn()
	}
	return out, err
}

func TestService_InvalidateDuringBuild(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory(chart(), txns())
	cache := &invalidatingCache{memCache: newMemCache()}
	src := &hookSource{Source: repo}
	svc := NewService(src, WithCache(cache))

	src.onLoad = func() {
		repo.Replace(chart(), nil)
		require.NoError(t, svc.Invalidate(ctx))
	}
	stale, err := svc.Build(ctx, Query{})
	require.NoError(t, err)
	assert.True(t, stale.Income.NetIncome.Equal(dec("400")))
	assert.Contains(t, cache.data, "0:"+Query{}.cacheKey())
	assert.NotContains(t, cache.data, "1:"+Query{}.cacheKey())

	fresh, err := svc.Build(ctx, Query{})
	require.NoError(t, err)
	assert.True(t, fresh.Income.NetIncome.IsZero())
	assert.Equal(t, 2, cache.sets)
}

func TestService_Invalidate(t *testing.T) {
	repo := store.NewMemory(chart(), txns())
	cache := &invalidatingCache{memCache: newMemCache()}
	svc := NewService(repo, WithCache(cache))

	_, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	repo.Replace(chart(), nil)
	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Equal(t, 1, cache.invalidated)

	pkg, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.True(t, pkg.Income.NetIncome.IsZero())

	// caches without invalidation and no cache at all are fine
	assert.NoError(t, NewService(repo, WithCache(newMemCache())).Invalidate(context.Background()))
	assert.NoError(t, NewService(repo).Invalidate(context.Background()))
}
