package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,date,account_id,description,debit,credit,status,submitted_by,submitted_at,reviewed_by,reviewed_at,notes"

const (
	numFields      = 12
	dateFormat     = "2006-01-02"
	colEntryID     = 0
	colDate        = 1
	colAcctID      = 2
	colDesc        = 3
	colDebit       = 4
	colCredit      = 5
	colStatus      = 6
	colSubmittedBy = 7
	colSubmittedAt = 8
	colReviewedBy  = 9
	colReviewedAt  = 10
	colNotes       = 11
)

// ReadLegs reads all legs from a journal.csv reader.
func ReadLegs(r io.Reader) ([]model.Leg, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var legs []model.Leg
	for i, rec := range records[1:] {
		leg, err := UnmarshalLeg(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

// WriteLegs writes legs to a journal.csv writer (including header).
func WriteLegs(w io.Writer, legs []model.Leg) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, leg := range legs {
		if err := cw.Write(MarshalLeg(leg)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendLegs appends legs to an existing journal.csv writer (no header).
func AppendLegs(w io.Writer, legs []model.Leg) error {
	cw := csv.NewWriter(w)
	for i, leg := range legs {
		if err := cw.Write(MarshalLeg(leg)); err != nil {
			return fmt.Errorf("writing leg %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLeg converts a Leg to a CSV row.
func MarshalLeg(leg model.Leg) []string {
	row := make([]string, numFields)
	row[colEntryID] = leg.EntryID
	row[colDate] = leg.Date.Format(dateFormat)
	row[colAcctID] = leg.AccountID
	row[colDesc] = leg.Description

	if !leg.Debit.IsZero() {
		row[colDebit] = leg.Debit.StringFixed(2)
	}
	if !leg.Credit.IsZero() {
		row[colCredit] = leg.Credit.StringFixed(2)
	}

	row[colStatus] = string(leg.Status)
	row[colSubmittedBy] = leg.SubmittedBy
	row[colSubmittedAt] = formatTimestamp(leg.SubmittedAt)
	row[colReviewedBy] = leg.ReviewedBy
	row[colReviewedAt] = formatTimestamp(leg.ReviewedAt)
	row[colNotes] = leg.Notes
	return row
}

// UnmarshalLeg converts a CSV row to a Leg.
func UnmarshalLeg(record []string) (model.Leg, error) {
	if len(record) != numFields {
		return model.Leg{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Leg{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	status := model.EntryStatus(record[colStatus])
	if !status.Valid() {
		return model.Leg{}, fmt.Errorf("unknown status %q", record[colStatus])
	}

	var debit, credit decimal.Decimal
	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return model.Leg{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}
	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return model.Leg{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	submittedAt, err := parseTimestamp(record[colSubmittedAt])
	if err != nil {
		return model.Leg{}, fmt.Errorf("parsing submitted_at: %w", err)
	}
	reviewedAt, err := parseTimestamp(record[colReviewedAt])
	if err != nil {
		return model.Leg{}, fmt.Errorf("parsing reviewed_at: %w", err)
	}

	return model.Leg{
		EntryID:     record[colEntryID],
		Date:        date,
		AccountID:   record[colAcctID],
		Description: record[colDesc],
		Debit:       debit,
		Credit:      credit,
		Status:      status,
		SubmittedBy: record[colSubmittedBy],
		SubmittedAt: submittedAt,
		ReviewedBy:  record[colReviewedBy],
		ReviewedAt:  reviewedAt,
		Notes:       record[colNotes],
	}, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, err)
	}
	return t, nil
}
