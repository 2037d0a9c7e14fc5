// Package id formats and parses journal entry identifiers and mints audit
// event identifiers.
package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Entry identifies a journal entry by its month and sequence number.
type Entry struct {
	Year  int
	Month int
	Seq   int
}

// String returns an entry ID like "2025-01-001".
func (e Entry) String() string {
	return fmt.Sprintf("%04d-%02d-%03d", e.Year, e.Month, e.Seq)
}

// Leg returns the ID of the n-th leg of the entry: 0='a', 1='b', etc.
// Entries with more than 26 legs continue with "aa", "ab", ...
func (e Entry) Leg(n int) string {
	return e.String() + legSuffix(n)
}

func legSuffix(n int) string {
	if n < 26 {
		return string(rune('a' + n))
	}
	return legSuffix(n/26-1) + string(rune('a'+n%26))
}

// Parse parses "2025-01-001" (or a leg ID "2025-01-001a") into an Entry.
func Parse(s string) (Entry, error) {
	base := EntryGroup(s)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return Entry{}, fmt.Errorf("invalid entry ID format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid year in entry ID %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid month in entry ID %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Entry{}, fmt.Errorf("month %d out of range in entry ID %q", month, s)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid sequence in entry ID %q: %w", s, err)
	}
	if seq < 1 {
		return Entry{}, fmt.Errorf("sequence %d out of range in entry ID %q", seq, s)
	}

	return Entry{Year: year, Month: month, Seq: seq}, nil
}

// EntryGroup strips the leg suffix from a leg ID.
// "2025-01-001a" -> "2025-01-001"
func EntryGroup(legID string) string {
	i := len(legID)
	for i > 0 && legID[i-1] >= 'a' && legID[i-1] <= 'z' {
		i--
	}
	return legID[:i]
}

// NewEvent returns a fresh random audit event ID.
func NewEvent() string {
	return uuid.NewString()
}
