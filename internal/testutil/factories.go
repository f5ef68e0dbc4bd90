package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithDescription("My description").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// Build inserts the portfolio into the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := repository.NewPortfolioRepository(db).CreatePortfolio(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return p
}

// CreatePortfolio is a convenience function to create a portfolio with just a name.
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with default settings.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := range count {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// OrderBuilder provides a fluent interface for creating test orders.
//
// Example usage:
//
//	testutil.NewOrder(portfolio.ID).
//	    Buy("AAPL", 10, 150).
//	    On(testutil.Date(t, "2025-01-02")).
//	    Build(t, db)
type OrderBuilder struct {
	PortfolioID string
	Order       model.Order
}

// NewOrder creates an OrderBuilder for a 10-share AAPL buy at 100 on 2025-01-02.
func NewOrder(portfolioID string) *OrderBuilder {
	return &OrderBuilder{
		PortfolioID: portfolioID,
		Order: model.Order{
			Date:       time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			Side:       model.SideBuy,
			Instrument: "AAPL",
			Quantity:   10,
			UnitPrice:  100,
		},
	}
}

// Buy makes the order a buy.
func (b *OrderBuilder) Buy(instrument string, quantity, unitPrice float64) *OrderBuilder {
	b.Order.Side = model.SideBuy
	b.Order.Instrument = instrument
	b.Order.Quantity = quantity
	b.Order.UnitPrice = unitPrice
	return b
}

// Sell makes the order a sell.
func (b *OrderBuilder) Sell(instrument string, quantity, unitPrice float64) *OrderBuilder {
	b.Order.Side = model.SideSell
	b.Order.Instrument = instrument
	b.Order.Quantity = quantity
	b.Order.UnitPrice = unitPrice
	return b
}

// On sets the order date.
func (b *OrderBuilder) On(date time.Time) *OrderBuilder {
	b.Order.Date = model.Day(date)
	return b
}

// Build appends the order to the portfolio's ledger and returns it.
func (b *OrderBuilder) Build(t *testing.T, db *sql.DB) model.StoredOrder {
	t.Helper()

	stored, err := repository.NewOrderRepository(db).InsertOrders(context.Background(), b.PortfolioID, []model.Order{b.Order})
	if err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return stored[0]
}

// PriceBuilder provides a fluent interface for creating stored closes.
type PriceBuilder struct {
	Price model.InstrumentPrice
}

// NewPrice creates a PriceBuilder for a close of 100 on 2025-01-02.
func NewPrice(instrument string) *PriceBuilder {
	return &PriceBuilder{
		Price: model.InstrumentPrice{
			ID:         MakeID(),
			Instrument: instrument,
			Date:       time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			Close:      100,
			Source:     "test",
		},
	}
}

// On sets the trading date.
func (b *PriceBuilder) On(date time.Time) *PriceBuilder {
	b.Price.Date = model.Day(date)
	return b
}

// WithClose sets the close.
func (b *PriceBuilder) WithClose(closePrice float64) *PriceBuilder {
	b.Price.Close = closePrice
	return b
}

// Build stores the close and returns it.
func (b *PriceBuilder) Build(t *testing.T, db *sql.DB) model.InstrumentPrice {
	t.Helper()

	if _, err := repository.NewPriceRepository(db).UpsertPrices(context.Background(), []model.InstrumentPrice{b.Price}); err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
	return b.Price
}

// CreatePrices stores one close per calendar day from..to inclusive, all at
// closePrice. Saturdays and Sundays are skipped when weekdaysOnly is set.
func CreatePrices(t *testing.T, db *sql.DB, instrument string, from, to time.Time, closePrice float64, weekdaysOnly bool) {
	t.Helper()

	var prices []model.InstrumentPrice
	for d := model.Day(from); !d.After(model.Day(to)); d = d.AddDate(0, 0, 1) {
		if weekdaysOnly && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		prices = append(prices, model.InstrumentPrice{
			Instrument: instrument,
			Date:       d,
			Close:      closePrice,
			Source:     "test",
		})
	}
	if _, err := repository.NewPriceRepository(db).UpsertPrices(context.Background(), prices); err != nil {
		t.Fatalf("Failed to create test prices: %v", err)
	}
}
