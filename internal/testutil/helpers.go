package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

// NewTestPortfolioService creates a PortfolioService for testing.
func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()
	return service.NewPortfolioService(
		repository.NewPortfolioRepository(db),
		repository.NewOrderRepository(db),
	)
}

// NewTestLedgerLoader creates a LedgerLoader for testing.
func NewTestLedgerLoader(t *testing.T, db *sql.DB) *service.LedgerLoader {
	t.Helper()
	return service.NewLedgerLoader(
		repository.NewPortfolioRepository(db),
		repository.NewOrderRepository(db),
	)
}

// NewTestValuationService creates a ValuationService backed by the stored
// prices, with "today" fixed to today.
func NewTestValuationService(t *testing.T, db *sql.DB, today time.Time, opts ...service.ValuationOption) *service.ValuationService {
	t.Helper()
	opts = append([]service.ValuationOption{
		service.WithTimeout(5 * time.Second),
		service.WithClock(func() time.Time { return today }),
	}, opts...)
	return service.NewValuationService(
		NewTestLedgerLoader(t, db),
		repository.NewPriceRepository(db),
		opts...,
	)
}

// NewTestPriceService creates a PriceService for testing with a mocked Yahoo client.
func NewTestPriceService(t *testing.T, db *sql.DB, mockYahoo yahoo.Client) *service.PriceService {
	t.Helper()
	return service.NewPriceService(
		repository.NewPriceRepository(db),
		repository.NewOrderRepository(db),
		mockYahoo,
		7,
	)
}

// NewTestSystemService creates a SystemService for testing.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db, repository.NewPriceRepository(db), map[string]bool{"price_refresh": true})
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", s, err)
	}
	return d
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
