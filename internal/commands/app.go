package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/cache"
	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/gitops"
	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/logging"
	"github.com/tallybooks/tally/internal/ratios"
	"github.com/tallybooks/tally/internal/report"
	"github.com/tallybooks/tally/internal/store"
)

// app holds the global flags and the state loaded from the books directory.
type app struct {
	repo      string
	jsonOut   bool
	actor     string
	logLevel  string
	lookupEnv func(string) (string, bool)

	root string
	cfg  *config.Config
	log  *zap.Logger
}

// load resolves the books directory and reads .env and tally.yaml from it.
func (a *app) load() error {
	root, err := filepath.Abs(a.repo)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	a.root = root

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := filepath.Join(root, config.FileName)
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no %s in %s (run tally init)", config.FileName, root)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(a.lookupEnv)
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) openRepository(ctx context.Context) (store.Repository, error) {
	repo, err := store.Open(ctx, a.cfg.Storage, a.root)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", a.cfg.Storage.Driver, err)
	}
	return repo, nil
}

// openCache connects the report cache. A configured but unreachable Redis
// is logged and reporting continues uncached.
func (a *app) openCache(ctx context.Context) *cache.Redis {
	if a.cfg.Cache.RedisURL == "" {
		return nil
	}
	c, err := cache.NewRedis(ctx, a.cfg.Cache.RedisURL, a.cfg.Cache.TTL)
	if err != nil {
		a.log.Warn("continuing without report cache", zap.Error(err))
		return nil
	}
	return c
}

func (a *app) ratioEngine() (*ratios.Engine, error) {
	overrides := make(map[string]ratios.Thresholds, len(a.cfg.Ratios))
	for key, t := range a.cfg.Ratios {
		overrides[key] = ratios.Thresholds{
			Good:    decimal.NewFromFloat(t.Good),
			Warning: decimal.NewFromFloat(t.Warning),
		}
	}
	engine, err := ratios.NewEngine(overrides)
	if err != nil {
		return nil, fmt.Errorf("ratio thresholds: %w", err)
	}
	return engine, nil
}

// reports wires the report service over the configured repository and
// cache. The returned func releases both.
func (a *app) reports(ctx context.Context) (*report.Service, store.Repository, func(), error) {
	engine, err := a.ratioEngine()
	if err != nil {
		return nil, nil, nil, err
	}
	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []report.Option{report.WithEngine(engine), report.WithLogger(a.log)}
	rc := a.openCache(ctx)
	if rc != nil {
		opts = append(opts, report.WithCache(rc))
	}

	release := func() {
		if rc != nil {
			_ = rc.Close()
		}
		if err := store.Close(repo); err != nil {
			a.log.Warn("closing storage", zap.Error(err))
		}
	}
	return report.NewService(repo, opts...), repo, release, nil
}

func (a *app) query(from, to, retainedOpening, dividends string) (report.Query, error) {
	w, err := ledger.ParseWindow(from, to)
	if err != nil {
		return report.Query{}, err
	}
	q := report.Query{Window: w}
	if retainedOpening != "" {
		if q.RetainedOpening, err = decimal.NewFromString(retainedOpening); err != nil {
			return report.Query{}, fmt.Errorf("parsing --retained-opening: %w", err)
		}
	} else if q.RetainedOpening, err = a.cfg.RetainedEarningsOpening(); err != nil {
		return report.Query{}, err
	}
	if dividends != "" {
		if q.Dividends, err = decimal.NewFromString(dividends); err != nil {
			return report.Query{}, fmt.Errorf("parsing --dividends: %w", err)
		}
	}
	return q, nil
}

// recorded appends an audit event, drops cached reports and commits the
// books when auto-commit is on. A commit with no changes is not an error.
func (a *app) recorded(ctx context.Context, event audit.Event, message string) error {
	repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	defer store.Close(repo)
	if err := repo.AppendAuditEvent(ctx, event); err != nil {
		return fmt.Errorf("recording audit event: %w", err)
	}

	if rc := a.openCache(ctx); rc != nil {
		if err := rc.Invalidate(ctx); err != nil {
			a.log.Warn("invalidating report cache", zap.Error(err))
		}
		_ = rc.Close()
	}

	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.root) {
		return nil
	}
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(ctx, a.root, message, author)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("committing books: %w", err)
	}
	a.log.Debug("books committed", zap.String("commit", hash), zap.String("message", message))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
