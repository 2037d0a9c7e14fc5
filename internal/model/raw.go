package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The Flex types decode loosely typed document-store fields. They never fail:
// anything they cannot make sense of decodes to the zero value.

// FlexString accepts a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	*s = FlexString(data)
	return nil
}

// FlexAmount accepts a JSON number or numeric string.
type FlexAmount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(data)
	d, err := decimal.NewFromString(strings.ReplaceAll(string(s), ",", ""))
	if err != nil {
		d = decimal.Zero
	}
	a.Decimal = d
	return nil
}

// FlexBool accepts a JSON bool, "true"/"false" (any case, also "yes"/"no"
// and "1"/"0"), or the numbers 1 and 0. Valid is false when the field is
// null or unrecognized.
type FlexBool struct {
	Bool  bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	*b = FlexBool{}
	var s FlexString
	_ = s.UnmarshalJSON(data)
	switch strings.ToLower(string(s)) {
	case "true", "yes", "1":
		*b = FlexBool{Bool: true, Valid: true}
	case "false", "no", "0":
		*b = FlexBool{Bool: false, Valid: true}
	}
	return nil
}

var flexTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FlexTime accepts a date or RFC 3339 string, Unix milliseconds, or a
// Firestore timestamp object.
type FlexTime struct {
	time.Time
}

type firestoreTimestamp struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  int64  `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds int64  `json:"_nanoseconds"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var ts firestoreTimestamp
		if err := json.Unmarshal(data, &ts); err != nil {
			return nil
		}
		switch {
		case ts.Seconds != nil:
			t.Time = time.Unix(*ts.Seconds, ts.Nanoseconds).UTC()
		case ts.USeconds != nil:
			t.Time = time.Unix(*ts.USeconds, ts.UNanoseconds).UTC()
		}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		t.Time = ParseFlexTime(s)
	default:
		if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			t.Time = time.UnixMilli(ms).UTC()
		}
	}
	return nil
}

// ParseFlexTime parses s with the layouts FlexTime accepts. It returns the
// zero time when none match.
func ParseFlexTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range flexTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
