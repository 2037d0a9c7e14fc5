package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybooks/tally/internal/model"
)

var fixedNow = time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(dir, testRegistry())
	svc.now = func() time.Time { return fixedNow }
	return svc, dir
}

func addDouble(t *testing.T, svc *Service, day int, debit, credit, amount string) string {
	t.Helper()
	entryID, err := svc.AddDouble(AddDoubleParams{
		Date:          date(2025, 1, day),
		Description:   "test entry",
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        dec(amount),
		SubmittedBy:   "dana",
	})
	require.NoError(t, err)
	return entryID
}

func TestAddDouble_NewMonth(t *testing.T) {
	svc, dir := newTestService(t)

	entryID := addDouble(t, svc, 15, "5020", "1010", "4.00")
	assert.Equal(t, "2025-01-001", entryID)

	_, err := os.Stat(filepath.Join(dir, "journal", "2025", "01", "journal.csv"))
	require.NoError(t, err)

	legs, err := svc.ReadMonth(2025, 1)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, "2025-01-001a", legs[0].EntryID)
	assert.Equal(t, "2025-01-001b", legs[1].EntryID)
	assert.True(t, legs[0].Debit.Equal(dec("4.00")))
	assert.True(t, legs[1].Credit.Equal(dec("4.00")))
	for _, l := range legs {
		assert.Equal(t, model.StatusPending, l.Status)
		assert.Equal(t, "dana", l.SubmittedBy)
		assert.True(t, l.SubmittedAt.Equal(fixedNow))
	}
}

func TestAddDouble_SequenceIncrements(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, "2025-01-001", addDouble(t, svc, 10, "5020", "1010", "10.00"))
	assert.Equal(t, "2025-01-002", addDouble(t, svc, 11, "1010", "4010", "20.00"))

	seq, err := svc.NextEntrySeq(2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, seq)

	seq, err = svc.NextEntrySeq(2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestSubmit_MultiLeg(t *testing.T) {
	svc, _ := newTestService(t)

	entryID, err := svc.Submit(SubmitParams{
		Date:        date(2025, 1, 31),
		Description: "January sales",
		SubmittedBy: "dana",
		Lines: []Line{
			{AccountID: "1010", Debit: dec("300")},
			{AccountID: "4010", Credit: dec("250"), Description: "product"},
			{AccountID: "2010", Credit: dec("50"), Description: "sales tax"},
		},
	})
	require.NoError(t, err)

	entries, err := svc.Entries("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)
	require.Len(t, entries[0].Legs, 3)
	assert.Equal(t, "January sales", entries[0].Legs[0].Description)
	assert.Equal(t, "sales tax", entries[0].Legs[2].Description)

	d, c := entries[0].Totals()
	assert.True(t, d.Equal(c))
}

func TestSubmit_RejectsInvalid(t *testing.T) {
	svc, dir := newTestService(t)

	_, err := svc.AddDouble(AddDoubleParams{
		Date:          date(2025, 1, 5),
		DebitAccount:  "9999",
		CreditAccount: "1010",
		Amount:        dec("10"),
		SubmittedBy:   "dana",
	})
	assert.ErrorContains(t, err, "validation failed")
	assert.ErrorContains(t, err, "invariant 3")

	_, err = svc.Submit(SubmitParams{
		Date:        date(2025, 1, 5),
		SubmittedBy: "dana",
		Lines: []Line{
			{AccountID: "1010", Debit: dec("10")},
			{AccountID: "4010", Credit: dec("9")},
		},
	})
	assert.ErrorContains(t, err, "invariant 1")

	_, err = svc.Submit(SubmitParams{Date: date(2025, 1, 5), SubmittedBy: "dana"})
	assert.Error(t, err)

	_, err = svc.AddDouble(AddDoubleParams{Date: date(2025, 1, 5), DebitAccount: "5020", CreditAccount: "1010", Amount: dec("1")})
	assert.ErrorContains(t, err, "submitter")

	_, err = os.Stat(filepath.Join(dir, "journal", "2025", "01", "journal.csv"))
	assert.True(t, os.IsNotExist(err), "nothing written for invalid entries")
}

func TestApprove(t *testing.T) {
	svc, _ := newTestService(t)
	first := addDouble(t, svc, 10, "5020", "1010", "10.00")
	second := addDouble(t, svc, 12, "1010", "4010", "25.00")

	decided, err := svc.Approve(first, "lee")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, decided.Status)
	require.Len(t, decided.Legs, 2)
	assert.Equal(t, "lee", decided.Legs[0].ReviewedBy)

	approved, err := svc.Entries(model.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, first, approved[0].ID)
	assert.True(t, approved[0].Legs[1].ReviewedAt.Equal(fixedNow))

	pending, err := svc.Entries(model.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)
}

func TestApprove_AcceptsLegID(t *testing.T) {
	svc, _ := newTestService(t)
	addDouble(t, svc, 10, "5020", "1010", "10.00")
	decided, err := svc.Approve("2025-01-001b", "lee")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-001", decided.ID)
}

func TestApprove_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	entryID := addDouble(t, svc, 10, "5020", "1010", "10.00")

	_, err := svc.Approve("2025-01-007", "lee")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = svc.Approve("2025-03-001", "lee")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = svc.Approve("garbage", "lee")
	assert.Error(t, err)

	_, err = svc.Approve(entryID, "")
	assert.ErrorContains(t, err, "reviewer")

	_, err = svc.Approve(entryID, "lee")
	require.NoError(t, err)
	_, err = svc.Approve(entryID, "lee")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = svc.Reject(entryID, "lee", "duplicate")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDeactivatedAccount_PendingEntry(t *testing.T) {
	reg := testRegistry()
	svc := NewService(t.TempDir(), reg)
	svc.now = func() time.Time { return fixedNow }

	pending := addDouble(t, svc, 10, "5020", "1010", "10.00")
	require.NoError(t, reg.Deactivate("5020"))

	// unrelated entries in the same month still go through
	assert.Equal(t, "2025-01-002", addDouble(t, svc, 11, "2010", "1010", "5.00"))

	// new legs on the deactivated account do not
	_, err := svc.AddDouble(AddDoubleParams{
		Date:          date(2025, 1, 12),
		DebitAccount:  "5020",
		CreditAccount: "1010",
		Amount:        dec("1.00"),
		SubmittedBy:   "dana",
	})
	assert.ErrorContains(t, err, `account "5020" is inactive`)

	_, err = svc.Approve(pending, "lee")
	assert.ErrorIs(t, err, ErrAccountInactive)
	legs, err := svc.ReadMonth(2025, 1)
	require.NoError(t, err)
	for _, l := range legs {
		assert.Equal(t, model.StatusPending, l.Status, l.EntryID)
	}

	decided, err := svc.Reject(pending, "lee", "account closed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, decided.Status)
}

func TestReject(t *testing.T) {
	svc, _ := newTestService(t)
	entryID := addDouble(t, svc, 10, "5020", "1010", "10.00")

	_, err := svc.Reject(entryID, "lee", "  ")
	assert.ErrorContains(t, err, "reason")

	decided, err := svc.Reject(entryID, "lee", "missing receipt")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, decided.Status)

	legs, err := svc.ReadMonth(2025, 1)
	require.NoError(t, err)
	for _, l := range legs {
		assert.Equal(t, model.StatusRejected, l.Status)
		assert.Equal(t, "missing receipt", l.Notes)
	}

	// rejected entries keep their sequence number
	assert.Equal(t, "2025-01-002", addDouble(t, svc, 11, "5020", "1010", "10.00"))
}

func TestTransactions_ApprovedOnly(t *testing.T) {
	svc, _ := newTestService(t)
	approved := addDouble(t, svc, 10, "5020", "1010", "10.00")
	rejected := addDouble(t, svc, 11, "5020", "1010", "20.00")
	addDouble(t, svc, 12, "5020", "1010", "30.00")

	_, err := svc.Approve(approved, "lee")
	require.NoError(t, err)
	_, err = svc.Reject(rejected, "lee", "wrong account")
	require.NoError(t, err)

	// a second month is picked up too
	feb, err := svc.AddDouble(AddDoubleParams{
		Date:          date(2025, 2, 3),
		DebitAccount:  "1010",
		CreditAccount: "3010",
		Amount:        dec("500"),
		SubmittedBy:   "dana",
	})
	require.NoError(t, err)
	_, err = svc.Approve(feb, "lee")
	require.NoError(t, err)

	txns, err := svc.Transactions()
	require.NoError(t, err)
	require.Len(t, txns, 4)

	assert.Equal(t, "2025-01-001a", txns[0].ID)
	assert.Equal(t, approved, txns[0].EntryID)
	assert.Equal(t, "5020", txns[0].AccountID)
	assert.True(t, txns[0].Debit.Equal(dec("10")))
	assert.Equal(t, "2025-02-001b", txns[3].ID)
	assert.Equal(t, "3010", txns[3].AccountID)
}

func TestMonths(t *testing.T) {
	svc, dir := newTestService(t)
	months, err := svc.Months()
	require.NoError(t, err)
	assert.Empty(t, months)

	addDouble(t, svc, 10, "5020", "1010", "10.00")
	_, err = svc.AddDouble(AddDoubleParams{
		Date: date(2024, 12, 3), DebitAccount: "5020", CreditAccount: "1010", Amount: dec("1"), SubmittedBy: "dana",
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "journal", "notes"), 0o755))

	months, err = svc.Months()
	require.NoError(t, err)
	assert.Equal(t, []Month{{2024, 12}, {2025, 1}}, months)
}
