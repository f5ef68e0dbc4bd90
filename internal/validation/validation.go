package validation

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.\-^=]{0,19}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSymbol checks that a ticker is safe to use in a Yahoo path and as a
// flat-file name, e.g. "AAPL", "BRK-B", "^GSPC", "EURUSD=X".
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return &Error{Fields: map[string]string{"symbol": fmt.Sprintf("invalid symbol: %q", symbol)}}
	}
	return nil
}
