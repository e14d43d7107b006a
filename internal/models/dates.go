package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned for date strings that are neither ISO dates
// nor RFC 3339 timestamps.
var ErrInvalidDate = errors.New("invalid date")

// DateLayout is the form input format.
const DateLayout = "2006-01-02"

// ParseDate accepts "2006-01-02" or RFC 3339 and returns midnight UTC of
// that calendar day. ok is false for an empty string.
func ParseDate(s string) (day time.Time, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Day(t), true, nil
}

// Day truncates t to its calendar day in its own location, returned as UTC
// midnight so day arithmetic is exact.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b (negative if b < a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
