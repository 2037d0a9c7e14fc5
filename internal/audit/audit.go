// Package audit keeps the append-only log of changes made to the books.
package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tallybooks/tally/internal/id"
)

// Actions recorded in the log.
const (
	ActionAccountCreated     = "account.created"
	ActionAccountDeactivated = "account.deactivated"
	ActionJournalSubmitted   = "journal.submitted"
	ActionJournalApproved    = "journal.approved"
	ActionJournalRejected    = "journal.rejected"
	ActionBooksInitialized   = "books.initialized"
	ActionReplicaSynced      = "replica.synced"
)

// Event is one row in the audit log.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Details   string    `json:"details"`
}

// NewEvent returns an event stamped with a fresh ID and the current time.
func NewEvent(actor, action, subject, details string) Event {
	return Event{
		ID:        id.NewEvent(),
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Actor:     actor,
		Action:    action,
		Subject:   subject,
		Details:   details,
	}
}

// Header is the CSV header for audit-log.csv.
const Header = "event_id,timestamp,actor,action,subject,details"

// LogFile is the audit log path relative to the books root.
const LogFile = "logs/audit-log.csv"

const (
	numFields    = 6
	colID        = 0
	colTimestamp = 1
	colActor     = 2
	colAction    = 3
	colSubject   = 4
	colDetails   = 5
)

// MarshalEvent converts an Event to a CSV row.
func MarshalEvent(e Event) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colSubject] = e.Subject
	row[colDetails] = e.Details
	return row
}

// UnmarshalEvent converts a CSV row to an Event.
func UnmarshalEvent(record []string) (Event, error) {
	if len(record) != numFields {
		return Event{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Event{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Event{
		ID:        record[colID],
		Timestamp: ts,
		Actor:     record[colActor],
		Action:    record[colAction],
		Subject:   record[colSubject],
		Details:   record[colDetails],
	}, nil
}

// Append writes events to <repoRoot>/logs/audit-log.csv, creating the file
// and header if needed.
func Append(repoRoot string, events ...Event) error {
	path := filepath.Join(repoRoot, LogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range events {
		if err := cw.Write(MarshalEvent(e)); err != nil {
			return fmt.Errorf("writing event %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing audit log: %w", err)
	}
	return f.Close()
}

// Read returns all events from <repoRoot>/logs/audit-log.csv, oldest first.
// A missing file yields no events.
func Read(repoRoot string) ([]Event, error) {
	f, err := os.Open(filepath.Join(repoRoot, LogFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return ReadEvents(f)
}

// ReadEvents parses an audit log CSV stream including its header.
func ReadEvents(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	events := make([]Event, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEvent(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		events = append(events, e)
	}
	return events, nil
}
