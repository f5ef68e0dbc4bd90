package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// DateRange is an optional inclusive range of calendar dates. A zero Start or
// End means the caller did not supply that side.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange extracts and validates start_date and end_date parameters.
//
// Validation rules:
//   - Both parameters are optional
//   - Each must be YYYY-MM-DD or RFC3339; the time of day is discarded
//   - When both are present, end_date must not be before start_date
//
// Returns an error wrapping apperrors.ErrInvalidDateRange for a reversed range.
func ParseDateRange(startDateParam, endDateParam string) (DateRange, error) {
	var dr DateRange

	if startDateParam = strings.TrimSpace(startDateParam); startDateParam != "" {
		start, err := ParseDate(startDateParam)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		dr.Start = start
	}

	if endDateParam = strings.TrimSpace(endDateParam); endDateParam != "" {
		end, err := ParseDate(endDateParam)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		dr.End = end
	}

	if !dr.Start.IsZero() && !dr.End.IsZero() && dr.End.Before(dr.Start) {
		return DateRange{}, fmt.Errorf("%w: end_date %s is before start_date %s",
			apperrors.ErrInvalidDateRange, model.DateKey(dr.End), model.DateKey(dr.Start))
	}
	return dr, nil
}

// ParseDate parses a YYYY-MM-DD or RFC3339 value into a calendar date at midnight UTC.
func ParseDate(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
