package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrPriceNotFound indicates no stored price for a specific instrument and date range.
	ErrPriceNotFound = errors.New("instrument price not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Ledger errors are raised while validating and normalizing raw orders.
var (
	// ErrEmptyLedger indicates that no orders were supplied for a valuation.
	ErrEmptyLedger = errors.New("order ledger is empty")

	// ErrMalformedOrder indicates that an order record is missing required fields
	// or carries a value that cannot be parsed (date, side).
	ErrMalformedOrder = errors.New("malformed order")

	// ErrInvalidOrder indicates a well-formed order with a non-positive quantity or price.
	// Only returned when strict normalization is requested.
	ErrInvalidOrder = errors.New("invalid order")
)

// Valuation errors are terminal for the valuation or projection call that raised them.
var (
	// ErrDataUnavailable indicates that no price series backs an instrument referenced
	// by an order, or that the series has no trading day in the required window.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrUnknownInstrument indicates a sell order for an instrument that was never bought.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrDivisionByZero indicates that an allocation was requested while the
	// portfolio total on the last valuation date is zero.
	ErrDivisionByZero = errors.New("allocation undefined: total value is zero")

	// ErrEmptyAllocation indicates that an allocation map has no entries.
	ErrEmptyAllocation = errors.New("allocation is empty")

	// ErrInvalidAllocation indicates a percentage outside [0,100] or an unusable instrument key.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrValuationTimeout indicates that the valuation exceeded its wall-clock budget.
	// Callers may retry.
	ErrValuationTimeout = errors.New("valuation timed out")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrievePortfolios = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrieveOrders     = errors.New("failed to retrieve orders")
	ErrFailedToRetrievePrices     = errors.New("failed to retrieve prices")
	ErrFailedToRefreshPrices      = errors.New("failed to refresh prices")
)

// MalformedOrderError reports which required fields are absent or unparsable
// on a single raw order. It matches ErrMalformedOrder with errors.Is.
type MalformedOrderError struct {
	Index   int
	Missing []string
	Reason  string
}

func (e *MalformedOrderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed order at index %d", e.Index)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

func (e *MalformedOrderError) Is(target error) bool { return target == ErrMalformedOrder }

// InvalidOrderError reports a non-positive quantity or unit price.
// It matches ErrInvalidOrder with errors.Is.
type InvalidOrderError struct {
	Index int
	Field string
	Value float64
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order at index %d: %s must be positive, got %v", e.Index, e.Field, e.Value)
}

func (e *InvalidOrderError) Is(target error) bool { return target == ErrInvalidOrder }
