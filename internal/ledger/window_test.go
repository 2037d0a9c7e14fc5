package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1), w.From)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), w.To)
	assert.Equal(t, "2024-01-01..2024-01-31", w.String())
}

func TestParseWindow_Open(t *testing.T) {
	w, err := ParseWindow("", "")
	require.NoError(t, err)
	assert.True(t, w.From.IsZero())
	assert.True(t, w.To.IsZero())
	assert.Equal(t, "*..*", w.String())
	assert.True(t, w.Contains(date(1970, 1, 1)))
	assert.True(t, w.Contains(date(2999, 1, 1)))
}

func TestParseWindow_Errors(t *testing.T) {
	_, err := ParseWindow("01/01/2024", "")
	assert.Error(t, err)

	_, err = ParseWindow("", "tomorrow")
	assert.Error(t, err)

	_, err = ParseWindow("2024-02-01", "2024-01-31")
	assert.Error(t, err, "inverted window")
}

func TestWindowContains(t *testing.T) {
	w := Window{From: date(2024, 1, 1), To: date(2024, 1, 31)}
	assert.True(t, w.Contains(date(2024, 1, 1)), "lower bound inclusive")
	assert.True(t, w.Contains(date(2024, 1, 31)), "upper bound inclusive")
	assert.False(t, w.Contains(date(2023, 12, 31)))
	assert.False(t, w.Contains(date(2024, 1, 31).Add(time.Nanosecond)))
}
