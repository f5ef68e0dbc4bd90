package valuation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// Ledger is a validated order sequence sorted by date. Same-day orders keep
// the relative order they were supplied in.
type Ledger struct {
	Orders        []model.Order
	InceptionDate time.Time
}

// Instruments returns the distinct instruments in order of first appearance.
func (l Ledger) Instruments() []string {
	var out []string
	seen := make(map[string]bool)
	for _, o := range l.Orders {
		if !seen[o.Instrument] {
			seen[o.Instrument] = true
			out = append(out, o.Instrument)
		}
	}
	return out
}

// NormalizeOptions controls optional strictness of NormalizeOrders.
type NormalizeOptions struct {
	// RejectNonPositive fails orders whose quantity or unit price is <= 0 with
	// ErrInvalidOrder. When false such orders are accepted as-is.
	RejectNonPositive bool
}

// NormalizeOrders validates raw order records and returns them as a sorted Ledger.
//
// Steps, in order:
//  1. An empty list fails with ErrEmptyLedger; a record missing date, type,
//     ticker, shares or price_per_share fails with a MalformedOrderError
//     listing the missing fields.
//  2. The side is matched case-insensitively against BUY/SELL, the instrument
//     is trimmed and the date is parsed into a calendar date.
//  3. Orders are stably sorted by date.
func NormalizeOrders(raw []model.RawOrder, opts NormalizeOptions) (Ledger, error) {
	if len(raw) == 0 {
		return Ledger{}, apperrors.ErrEmptyLedger
	}

	orders := make([]model.Order, 0, len(raw))
	for i, r := range raw {
		o, err := normalizeOrder(i, r, opts)
		if err != nil {
			return Ledger{}, err
		}
		orders = append(orders, o)
	}
	return NewLedger(orders)
}

// NewLedger sorts already-typed orders into a Ledger without re-validating them.
func NewLedger(orders []model.Order) (Ledger, error) {
	if len(orders) == 0 {
		return Ledger{}, apperrors.ErrEmptyLedger
	}
	sorted := slices.Clone(orders)
	for i := range sorted {
		sorted[i].Date = model.Day(sorted[i].Date)
	}
	slices.SortStableFunc(sorted, func(a, b model.Order) int {
		return a.Date.Compare(b.Date)
	})
	return Ledger{Orders: sorted, InceptionDate: sorted[0].Date}, nil
}

func normalizeOrder(i int, r model.RawOrder, opts NormalizeOptions) (model.Order, error) {
	var missing []string
	if strings.TrimSpace(r.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(r.Side) == "" {
		missing = append(missing, "type")
	}
	instrument := strings.TrimSpace(r.Instrument)
	if instrument == "" {
		missing = append(missing, "ticker")
	}
	if !r.Quantity.Valid {
		missing = append(missing, "shares")
	}
	if !r.UnitPrice.Valid {
		missing = append(missing, "price_per_share")
	}
	if len(missing) > 0 {
		return model.Order{}, &apperrors.MalformedOrderError{Index: i, Missing: missing}
	}

	side, ok := model.ParseSide(r.Side)
	if !ok {
		return model.Order{}, &apperrors.MalformedOrderError{
			Index:  i,
			Reason: fmt.Sprintf("unknown order type %q", r.Side),
		}
	}

	date, err := model.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return model.Order{}, &apperrors.MalformedOrderError{Index: i, Reason: err.Error()}
	}

	quantity, _ := r.Quantity.Decimal.Float64()
	unitPrice, _ := r.UnitPrice.Decimal.Float64()

	if opts.RejectNonPositive {
		if quantity <= 0 {
			return model.Order{}, &apperrors.InvalidOrderError{Index: i, Field: "shares", Value: quantity}
		}
		if unitPrice <= 0 {
			return model.Order{}, &apperrors.InvalidOrderError{Index: i, Field: "price_per_share", Value: unitPrice}
		}
	}

	return model.Order{
		Date:       date,
		Side:       side,
		Instrument: instrument,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}, nil
}
