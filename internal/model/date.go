package model

import (
	"fmt"
	"time"
)

// DateFormat is the calendar date layout used for keys, storage and JSON.
const DateFormat = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date string in "2006-01-02" or RFC3339 format and
// returns the calendar date at midnight UTC.
func ParseDate(str string) (time.Time, error) {
	t, err := time.Parse(DateFormat, str)
	if err != nil {
		t, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date %q: %w", str, err)
		}
	}
	return Day(t), nil
}

// DateKey formats a date as a ValueSeries key.
func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}
