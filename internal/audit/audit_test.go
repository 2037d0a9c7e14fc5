package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEvent() Event {
	return Event{
		ID:        "6f1c2f4e-8d7a-4c11-9d0e-3b2a1f9e7c55",
		Timestamp: testTime,
		Actor:     "dana",
		Action:    ActionJournalSubmitted,
		Subject:   "2025-01-001",
		Details:   "Office chairs, 412.50",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEvent()))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))

	events, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, testEvent(), events[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEvent()))

	e2 := testEvent()
	e2.Actor = "lee"
	e2.Action = ActionJournalApproved
	e3 := testEvent()
	e3.Action = ActionAccountCreated
	e3.Subject = "1300"
	require.NoError(t, Append(dir, e2, e3))

	events, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{ActionJournalSubmitted, ActionJournalApproved, ActionAccountCreated},
		[]string{events[0].Action, events[1].Action, events[2].Action})

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "event_id,"), "header written once")
}

func TestRead_MissingFile(t *testing.T) {
	events, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReadEvents_BadTimestamp(t *testing.T) {
	in := Header + "\n" + "x,not-a-time,dana,account.created,1010,\n"
	_, err := ReadEvents(strings.NewReader(in))
	assert.ErrorContains(t, err, "row 2")
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestReadEvents_WrongFieldCount(t *testing.T) {
	in := Header + "\n" + "x,2025-01-01T00:00:00Z,dana\n"
	_, err := ReadEvents(strings.NewReader(in))
	assert.Error(t, err)
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	e := NewEvent("dana", ActionAccountDeactivated, "5090", "")

	_, err := uuid.Parse(e.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, e.ID, NewEvent("dana", ActionAccountDeactivated, "5090", "").ID)
	assert.Equal(t, "dana", e.Actor)
	assert.Equal(t, "5090", e.Subject)
	assert.False(t, e.Timestamp.Before(before))
}
