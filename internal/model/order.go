package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide matches s case-insensitively against BUY and SELL.
func ParseSide(s string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SideBuy):
		return SideBuy, true
	case string(SideSell):
		return SideSell, true
	}
	return "", false
}

// Order is a normalized, immutable buy or sell of an instrument.
// Date is a calendar date at midnight UTC.
type Order struct {
	Date       time.Time `json:"date"`
	Side       Side      `json:"type"`
	Instrument string    `json:"ticker"`
	Quantity   float64   `json:"shares"`
	UnitPrice  float64   `json:"price_per_share"`
}

// Amount returns quantity * unit price.
func (o Order) Amount() float64 {
	return float64(o.Quantity * o.UnitPrice)
}

// RawOrder is an order record as received from an API payload, a CSV file or a
// persisted row, before validation. Absent fields are left at their zero value
// (empty string, invalid NullDecimal) so the normalizer can report them.
//
// Quantity and UnitPrice accept JSON numbers or numeric strings.
type RawOrder struct {
	Date       string              `json:"date"`
	Side       string              `json:"type"`
	Instrument string              `json:"ticker"`
	Quantity   decimal.NullDecimal `json:"shares"`
	UnitPrice  decimal.NullDecimal `json:"price_per_share"`
}

// StoredOrder is an order row persisted for a portfolio.
// Sequence preserves insertion order for same-day orders.
type StoredOrder struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	Sequence    int64     `json:"sequence"`
	Order       Order     `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
}
