package valuation_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
)

// TestSeries tests price lookups on a single instrument.
//
// WHY: A missing date is a normal condition (weekends, holidays, pre-listing)
// and must report "not a trading day" rather than an interpolated value.
func TestSeries(t *testing.T) {
	s := valuation.NewSeries("X", []model.PricePoint{
		{Date: day(t, "2025-01-06"), Close: 12},
		{Date: day(t, "2025-01-02"), Close: 10},
		{Date: day(t, "2025-01-03"), Close: 0},
		{Date: day(t, "2025-01-07"), Close: math.NaN()},
		{Date: day(t, "2025-01-06"), Close: 13},
	})

	t.Run("drops unusable closes and keeps the last duplicate", func(t *testing.T) {
		if s.Len() != 2 {
			t.Fatalf("Expected 2 trading days, got %d", s.Len())
		}
		if got, _ := s.PriceOn(day(t, "2025-01-06")); got != 13 {
			t.Errorf("Expected last duplicate close 13, got %v", got)
		}
	})

	t.Run("missing date is not an error", func(t *testing.T) {
		for _, d := range []string{"2025-01-01", "2025-01-03", "2025-01-04", "2025-01-07"} {
			if _, ok := s.PriceOn(day(t, d)); ok {
				t.Errorf("Expected no price on %s", d)
			}
		}
	})

	t.Run("range is inclusive and sorted", func(t *testing.T) {
		got := s.Range(day(t, "2025-01-02"), day(t, "2025-01-06"))
		if len(got) != 2 || got[0].Close != 10 || got[1].Close != 13 {
			t.Errorf("Unexpected range: %v", got)
		}
		if got := s.Range(day(t, "2025-01-03"), day(t, "2025-01-05")); len(got) != 0 {
			t.Errorf("Expected empty range, got %v", got)
		}
		if got := s.Range(day(t, "2025-01-06"), day(t, "2025-01-02")); got != nil {
			t.Errorf("Expected nil for inverted range, got %v", got)
		}
	})
}

// TestPriceBook tests per-call caching and error translation.
//
// WHY: Each instrument's series must be read from storage exactly once per
// valuation, no matter how many orders reference it.
func TestPriceBook(t *testing.T) {
	t.Run("loads each instrument once", func(t *testing.T) {
		src := newCountingSource(map[string][]model.PricePoint{
			"A": dailyPrices(t, "2025-01-01", "2025-01-31", 10),
			"B": dailyPrices(t, "2025-01-01", "2025-01-31", 20),
		})
		orders := []model.Order{
			order(t, "2025-01-02", model.SideBuy, "A", 1, 10),
			order(t, "2025-01-03", model.SideBuy, "B", 1, 20),
			order(t, "2025-01-04", model.SideBuy, "A", 1, 10),
			order(t, "2025-01-05", model.SideSell, "B", 1, 20),
			order(t, "2025-01-06", model.SideBuy, "A", 1, 10),
		}

		if _, _, err := valuation.ComputeValueSeries(context.Background(), orders, src, day(t, "2025-01-10"), valuation.Options{}); err != nil {
			t.Fatalf("ComputeValueSeries() returned unexpected error: %v", err)
		}
		for _, instrument := range []string{"A", "B"} {
			if got := src.callsFor(instrument); got != 1 {
				t.Errorf("Expected 1 load for %s, got %d", instrument, got)
			}
		}
	})

	t.Run("source errors become ErrDataUnavailable", func(t *testing.T) {
		boom := errors.New("disk on fire")
		book := valuation.NewPriceBook(valuation.PriceSourceFunc(func(context.Context, string) ([]model.PricePoint, error) {
			return nil, boom
		}), 1)

		_, err := book.Load(context.Background(), "X")
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("Expected the source error to be wrapped, got %v", err)
		}
	})

	t.Run("empty series is unavailable", func(t *testing.T) {
		book := valuation.NewPriceBook(valuation.MapPriceSource{"X": nil}, 1)
		if _, err := book.Load(context.Background(), "X"); !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})

	t.Run("context errors pass through", func(t *testing.T) {
		book := valuation.NewPriceBook(valuation.PriceSourceFunc(func(context.Context, string) ([]model.PricePoint, error) {
			return nil, context.DeadlineExceeded
		}), 1)
		_, err := book.Load(context.Background(), "X")
		if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected a bare deadline error, got %v", err)
		}
	})
}
