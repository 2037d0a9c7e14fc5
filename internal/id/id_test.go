package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryString(t *testing.T) {
	tests := []struct {
		e    Entry
		want string
	}{
		{Entry{2025, 1, 1}, "2025-01-001"},
		{Entry{2025, 12, 99}, "2025-12-099"},
		{Entry{2025, 1, 123}, "2025-01-123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.e.String())
	}
}

func TestEntryLeg(t *testing.T) {
	e := Entry{2025, 1, 1}
	tests := []struct {
		leg  int
		want string
	}{
		{0, "2025-01-001a"},
		{1, "2025-01-001b"},
		{25, "2025-01-001z"},
		{26, "2025-01-001aa"},
		{27, "2025-01-001ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Leg(tt.leg))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Entry
	}{
		{"2025-01-001", Entry{2025, 1, 1}},
		{"2025-12-099", Entry{2025, 12, 99}},
		{"2025-01-001a", Entry{2025, 1, 1}},
		{"2025-03-042bc", Entry{2025, 3, 42}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "Parse(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "bad", "2025-01", "abcd-01-001", "2025-ab-001", "2025-01-abc", "2025-13-001", "2025-01-000"} {
		_, err := Parse(input)
		assert.Error(t, err, "Parse(%q) should fail", input)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	e := Entry{2025, 6, 15}
	got, err := Parse(e.Leg(3))
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEntryGroup(t *testing.T) {
	assert.Equal(t, "2025-01-001", EntryGroup("2025-01-001a"))
	assert.Equal(t, "2025-01-001", EntryGroup("2025-01-001"))
	assert.Equal(t, "", EntryGroup(""))
}

func TestNewEvent(t *testing.T) {
	a, b := NewEvent(), NewEvent()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
