package ledger

import (
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

// Window is an inclusive date range. A zero From is unbounded below and a
// zero To is unbounded above.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// String renders the window as "from..to" with "*" for an open bound.
func (w Window) String() string {
	from, to := "*", "*"
	if !w.From.IsZero() {
		from = w.From.Format(dateFormat)
	}
	if !w.To.IsZero() {
		to = w.To.Format(dateFormat)
	}
	return from + ".." + to
}

// ParseWindow parses YYYY-MM-DD bounds. Empty strings leave a bound open.
// The upper bound covers the whole of its day.
func ParseWindow(from, to string) (Window, error) {
	var w Window
	if from != "" {
		t, err := time.Parse(dateFormat, from)
		if err != nil {
			return Window{}, fmt.Errorf("parsing from date %q: %w", from, err)
		}
		w.From = t
	}
	if to != "" {
		t, err := time.Parse(dateFormat, to)
		if err != nil {
			return Window{}, fmt.Errorf("parsing to date %q: %w", to, err)
		}
		w.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !w.From.IsZero() && !w.To.IsZero() && w.To.Before(w.From) {
		return Window{}, fmt.Errorf("to date %s is before from date %s", to, from)
	}
	return w, nil
}
