package valuation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// dailyPrices returns a constant close for every calendar day in [from, to].
func dailyPrices(t *testing.T, from, to string, price float64) []model.PricePoint {
	t.Helper()
	var out []model.PricePoint
	for d := day(t, from); !d.After(day(t, to)); d = d.AddDate(0, 0, 1) {
		out = append(out, model.PricePoint{Date: d, Close: price})
	}
	return out
}

// closes builds a price series from date/close pairs.
func closes(t *testing.T, pairs map[string]float64) []model.PricePoint {
	t.Helper()
	out := make([]model.PricePoint, 0, len(pairs))
	for d, c := range pairs {
		out = append(out, model.PricePoint{Date: day(t, d), Close: c})
	}
	return out
}

func order(t *testing.T, date string, side model.Side, instrument string, quantity, unitPrice float64) model.Order {
	t.Helper()
	return model.Order{
		Date:       day(t, date),
		Side:       side,
		Instrument: instrument,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
}

// countingSource records how many times each instrument was loaded.
type countingSource struct {
	prices map[string][]model.PricePoint

	mu    sync.Mutex
	calls map[string]int
}

func newCountingSource(prices map[string][]model.PricePoint) *countingSource {
	return &countingSource{prices: prices, calls: make(map[string]int)}
}

func (s *countingSource) LoadPrices(ctx context.Context, instrument string) ([]model.PricePoint, error) {
	s.mu.Lock()
	s.calls[instrument]++
	s.mu.Unlock()
	return valuation.MapPriceSource(s.prices).LoadPrices(ctx, instrument)
}

func (s *countingSource) callsFor(instrument string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[instrument]
}

func mustValue(t *testing.T, series model.ValueSeries, date string) float64 {
	t.Helper()
	v, ok := series.Get(date)
	if !ok {
		t.Fatalf("series has no value for %s", date)
	}
	return v
}
