package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
)

var (
	// ErrEntryNotFound is returned when no legs carry the requested entry ID.
	ErrEntryNotFound = errors.New("journal entry not found")
	// ErrNotPending is returned when approving or rejecting a decided entry.
	ErrNotPending = errors.New("journal entry is not pending")
	// ErrAccountInactive is returned when approving an entry that posts to
	// an account deactivated after submission.
	ErrAccountInactive = errors.New("account is inactive")
)

const journalDir = "journal"

// Service provides business logic for journal entries.
type Service struct {
	repoRoot string
	accounts AccountLookup
	now      func() time.Time
}

// NewService creates a journal Service rooted at the books directory.
func NewService(repoRoot string, accounts AccountLookup) *Service {
	return &Service{repoRoot: repoRoot, accounts: accounts, now: time.Now}
}

// Line is one requested leg of a new entry.
type Line struct {
	AccountID   string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// SubmitParams holds parameters for a new journal entry.
type SubmitParams struct {
	Date        time.Time
	Description string
	Lines       []Line
	SubmittedBy string
	Notes       string
}

// Submit validates the entry together with the rest of its month and
// appends it as pending. Returns the entry ID.
func (s *Service) Submit(params SubmitParams) (string, error) {
	if params.Date.IsZero() {
		return "", errors.New("entry date is required")
	}
	if strings.TrimSpace(params.SubmittedBy) == "" {
		return "", errors.New("submitter is required")
	}
	if len(params.Lines) == 0 {
		return "", errors.New("entry has no lines")
	}

	year := params.Date.Year()
	month := int(params.Date.Month())

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return "", err
	}

	entry := id.Entry{Year: year, Month: month, Seq: nextSeq(existing)}
	submittedAt := s.now().UTC().Truncate(time.Second)

	newLegs := make([]model.Leg, len(params.Lines))
	for i, line := range params.Lines {
		desc := line.Description
		if desc == "" {
			desc = params.Description
		}
		newLegs[i] = model.Leg{
			EntryID:     entry.Leg(i),
			Date:        params.Date,
			AccountID:   line.AccountID,
			Description: desc,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Status:      model.StatusPending,
			SubmittedBy: params.SubmittedBy,
			SubmittedAt: submittedAt,
			Notes:       params.Notes,
		}
	}

	// Validate the whole month so sequence gaps are caught.
	all := append(append([]model.Leg(nil), existing...), newLegs...)
	errs := dropDeactivated(ValidateLegs(all, s.accounts, year, month), existing, s.accounts)
	if err := validationError(errs); err != nil {
		return "", err
	}

	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return "", fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendLegs(f, newLegs); err != nil {
		return "", fmt.Errorf("appending legs: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing journal: %w", err)
	}

	return entry.String(), nil
}

// AddDoubleParams holds parameters for a two-leg entry.
type AddDoubleParams struct {
	Date          time.Time
	Description   string
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	SubmittedBy   string
	Notes         string
}

// AddDouble submits a balanced entry with one debit and one credit leg.
func (s *Service) AddDouble(params AddDoubleParams) (string, error) {
	return s.Submit(SubmitParams{
		Date:        params.Date,
		Description: params.Description,
		SubmittedBy: params.SubmittedBy,
		Notes:       params.Notes,
		Lines: []Line{
			{AccountID: params.DebitAccount, Debit: params.Amount},
			{AccountID: params.CreditAccount, Credit: params.Amount},
		},
	})
}

// Approve marks a pending entry approved. Its legs become ledger
// transactions.
func (s *Service) Approve(entryID, reviewer string) (model.Entry, error) {
	return s.decide(entryID, reviewer, model.StatusApproved, "")
}

// Reject marks a pending entry rejected. The reason is stored in the
// legs' notes.
func (s *Service) Reject(entryID, reviewer, reason string) (model.Entry, error) {
	if strings.TrimSpace(reason) == "" {
		return model.Entry{}, errors.New("rejection reason is required")
	}
	return s.decide(entryID, reviewer, model.StatusRejected, reason)
}

func (s *Service) decide(entryID, reviewer string, status model.EntryStatus, notes string) (model.Entry, error) {
	if strings.TrimSpace(reviewer) == "" {
		return model.Entry{}, errors.New("reviewer is required")
	}
	e, err := id.Parse(entryID)
	if err != nil {
		return model.Entry{}, err
	}
	group := e.String()

	legs, err := s.ReadMonth(e.Year, e.Month)
	if err != nil {
		return model.Entry{}, err
	}

	reviewedAt := s.now().UTC().Truncate(time.Second)
	decided := model.Entry{ID: group, Status: status}
	for i := range legs {
		if legs[i].EntryGroup() != group {
			continue
		}
		if legs[i].Status != model.StatusPending {
			return model.Entry{}, fmt.Errorf("%s is %s: %w", group, legs[i].Status, ErrNotPending)
		}
		if status == model.StatusApproved {
			if acct, ok := s.accounts.Get(legs[i].AccountID); !ok || !acct.Active {
				return model.Entry{}, fmt.Errorf("%s: account %q: %w", group, legs[i].AccountID, ErrAccountInactive)
			}
		}
		legs[i].Status = status
		legs[i].ReviewedBy = reviewer
		legs[i].ReviewedAt = reviewedAt
		if notes != "" {
			legs[i].Notes = notes
		}
		decided.Legs = append(decided.Legs, legs[i])
	}
	if len(decided.Legs) == 0 {
		return model.Entry{}, fmt.Errorf("%s: %w", group, ErrEntryNotFound)
	}

	if err := s.writeMonth(e.Year, e.Month, legs); err != nil {
		return model.Entry{}, err
	}
	return decided, nil
}

// dropDeactivated removes inactive-account errors raised by legs already on
// file. Those accounts were active at submission; Approve checks them again.
func dropDeactivated(errs []ValidationError, existing []model.Leg, accounts AccountLookup) []ValidationError {
	stale := make(map[string]bool)
	for _, leg := range existing {
		if acct, ok := accounts.Get(leg.AccountID); ok && !acct.Active {
			stale[leg.EntryID] = true
		}
	}
	if len(stale) == 0 {
		return errs
	}
	kept := errs[:0]
	for _, e := range errs {
		if e.Invariant == 3 && stale[e.EntryID] {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// writeMonth replaces a month file via a temp file and rename.
func (s *Service) writeMonth(year, month int, legs []model.Leg) error {
	path := s.monthPath(year, month)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".journal-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp journal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteLegs(tmp, legs); err != nil {
		tmp.Close()
		return fmt.Errorf("writing journal %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp journal: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing journal %s: %w", path, err)
	}
	return nil
}

// ReadMonth reads all legs for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Leg, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	legs, err := ReadLegs(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return legs, nil
}

// Month is a year/month pair with a journal file.
type Month struct {
	Year  int
	Month int
}

// Months lists the months that have a journal file, oldest first.
func (s *Service) Months() ([]Month, error) {
	root := filepath.Join(s.repoRoot, journalDir)
	years, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}

	var months []Month
	for _, y := range years {
		year, err := strconv.Atoi(y.Name())
		if err != nil || !y.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, y.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing journal %s: %w", y.Name(), err)
		}
		for _, m := range entries {
			month, err := strconv.Atoi(m.Name())
			if err != nil || !m.IsDir() || month < 1 || month > 12 {
				continue
			}
			if _, err := os.Stat(s.monthPath(year, month)); err == nil {
				months = append(months, Month{Year: year, Month: month})
			}
		}
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months, nil
}

// Legs returns every leg in the journal, oldest month first.
func (s *Service) Legs() ([]model.Leg, error) {
	months, err := s.Months()
	if err != nil {
		return nil, err
	}
	var all []model.Leg
	for _, m := range months {
		legs, err := s.ReadMonth(m.Year, m.Month)
		if err != nil {
			return nil, err
		}
		all = append(all, legs...)
	}
	return all, nil
}

// Entries groups legs into entries. An empty status returns all entries.
func (s *Service) Entries(status model.EntryStatus) ([]model.Entry, error) {
	legs, err := s.Legs()
	if err != nil {
		return nil, err
	}

	var entries []model.Entry
	index := make(map[string]int)
	for _, leg := range legs {
		g := leg.EntryGroup()
		i, ok := index[g]
		if !ok {
			i = len(entries)
			index[g] = i
			entries = append(entries, model.Entry{ID: g, Status: leg.Status})
		}
		entries[i].Legs = append(entries[i].Legs, leg)
	}

	if status == "" {
		return entries, nil
	}
	filtered := entries[:0]
	for _, e := range entries {
		if e.Status == status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Transactions returns the legs of approved entries as ledger transactions.
func (s *Service) Transactions() ([]model.Transaction, error) {
	legs, err := s.Legs()
	if err != nil {
		return nil, err
	}
	var txns []model.Transaction
	for _, leg := range legs {
		if leg.Status == model.StatusApproved {
			txns = append(txns, leg.Transaction())
		}
	}
	return txns, nil
}

// NextEntrySeq returns the next available sequence number for a month.
func (s *Service) NextEntrySeq(year, month int) (int, error) {
	legs, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}
	return nextSeq(legs), nil
}

func nextSeq(legs []model.Leg) int {
	maxSeq := 0
	for _, leg := range legs {
		e, err := id.Parse(leg.EntryID)
		if err != nil {
			continue
		}
		if e.Seq > maxSeq {
			maxSeq = e.Seq
		}
	}
	return maxSeq + 1
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, journalDir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}

func validationError(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
