package repository

import (
	"fmt"
	"time"
)

// timestampFormats are the layouts a stored timestamp may come back in.
// The driver returns DATETIME columns as time.Time, which database/sql
// formats as RFC3339Nano when scanning into a string.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a stored timestamp or date string and returns it in UTC.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
