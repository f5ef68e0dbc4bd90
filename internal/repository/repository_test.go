package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/testutil"
)

// TestOrderRepository tests ledger storage and ordering.
//
// WHY: Replay order decides which same-day order lands first. The ledger must
// come back sorted by date with insertion order preserved within a date, also
// across separate appends.
func TestOrderRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewOrderRepository(db)
	p := testutil.NewPortfolio().Build(t, db)

	jan3 := testutil.Date(t, "2025-01-03")
	jan2 := testutil.Date(t, "2025-01-02")

	first, err := repo.InsertOrders(ctx, p.ID, []model.Order{
		{Date: jan3, Side: model.SideBuy, Instrument: "MSFT", Quantity: 1, UnitPrice: 400},
		{Date: jan2, Side: model.SideBuy, Instrument: "AAPL", Quantity: 10, UnitPrice: 100},
	})
	if err != nil {
		t.Fatalf("InsertOrders() returned unexpected error: %v", err)
	}
	if first[0].Sequence != 1 || first[1].Sequence != 2 {
		t.Errorf("Expected sequences 1,2, got %d,%d", first[0].Sequence, first[1].Sequence)
	}

	second, err := repo.InsertOrders(ctx, p.ID, []model.Order{
		{Date: jan3, Side: model.SideSell, Instrument: "MSFT", Quantity: 1, UnitPrice: 410},
	})
	if err != nil {
		t.Fatalf("second InsertOrders() returned unexpected error: %v", err)
	}
	if second[0].Sequence != 3 {
		t.Errorf("Expected sequence to continue at 3, got %d", second[0].Sequence)
	}

	orders, err := repo.GetOrders(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetOrders() returned unexpected error: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("Expected 3 orders, got %d", len(orders))
	}
	wantSeq := []int64{2, 1, 3}
	for i, o := range orders {
		if o.Sequence != wantSeq[i] {
			t.Errorf("order %d: expected sequence %d, got %d", i, wantSeq[i], o.Sequence)
		}
	}
	if orders[2].Order.Side != model.SideSell || orders[2].Order.UnitPrice != 410 {
		t.Errorf("Expected the sell to round-trip, got %+v", orders[2].Order)
	}

	t.Run("unknown portfolio violates the foreign key", func(t *testing.T) {
		_, err := repo.InsertOrders(ctx, testutil.MakeID(), []model.Order{
			{Date: jan2, Side: model.SideBuy, Instrument: "AAPL", Quantity: 1, UnitPrice: 1},
		})
		if err == nil {
			t.Error("Expected error for unknown portfolio")
		}
		testutil.AssertRowCount(t, db, "portfolio_order", 3)
	})

	t.Run("instrument first dates", func(t *testing.T) {
		firsts, err := repo.GetInstrumentFirstDates(ctx)
		if err != nil {
			t.Fatalf("GetInstrumentFirstDates() returned unexpected error: %v", err)
		}
		if len(firsts) != 2 || firsts[0].Instrument != "AAPL" || !firsts[0].FirstDate.Equal(jan2) ||
			firsts[1].Instrument != "MSFT" || !firsts[1].FirstDate.Equal(jan3) {
			t.Errorf("Unexpected first dates: %+v", firsts)
		}
	})

	t.Run("clean database removes the ledger", func(t *testing.T) {
		testutil.CleanDatabase(t, db)
		orders, err := repo.GetOrders(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetOrders() returned unexpected error: %v", err)
		}
		if len(orders) != 0 {
			t.Errorf("Expected empty ledger, got %d orders", len(orders))
		}
		testutil.AssertRowCount(t, db, "portfolio", 0)
	})
}

// TestPriceRepository tests close storage and range queries.
//
// WHY: Refreshes re-fetch overlapping days. A second write for the same day
// must replace the close rather than add a duplicate row.
func TestPriceRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewPriceRepository(db)

	testutil.CreatePrices(t, db, "SPY", testutil.Date(t, "2025-01-01"), testutil.Date(t, "2025-01-10"), 500, true)

	if _, err := repo.UpsertPrices(ctx, []model.InstrumentPrice{
		{Instrument: "SPY", Date: testutil.Date(t, "2025-01-02"), Close: 510, Source: "yahoo"},
	}); err != nil {
		t.Fatalf("UpsertPrices() returned unexpected error: %v", err)
	}

	prices, err := repo.GetPrices(ctx, "SPY", testutil.Date(t, "2025-01-02"), testutil.Date(t, "2025-01-03"))
	if err != nil {
		t.Fatalf("GetPrices() returned unexpected error: %v", err)
	}
	if len(prices) != 2 || prices[0].Close != 510 || prices[0].Source != "yahoo" || prices[1].Close != 500 {
		t.Errorf("Unexpected prices: %+v", prices)
	}

	latest, ok, err := repo.GetLatestPriceDate(ctx, "SPY")
	if err != nil || !ok || model.DateKey(latest) != "2025-01-10" {
		t.Errorf("Expected latest 2025-01-10, got %v %v %v", latest, ok, err)
	}

	t.Run("nothing stored", func(t *testing.T) {
		if _, ok, err := repo.GetLatestPriceDate(ctx, "NONE"); ok || err != nil {
			t.Errorf("Expected no latest date, got ok=%v err=%v", ok, err)
		}
		if _, err := repo.LoadPrices(ctx, "NONE"); !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})
}

// TestPortfolioRepository tests portfolio lookup.
func TestPortfolioRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewPortfolioRepository(db)

	id := testutil.MakeID()
	created := testutil.NewPortfolio().WithID(id).WithName("Growth").WithDescription("").Build(t, db)

	got, err := repo.GetPortfolioOnID(ctx, id)
	if err != nil {
		t.Fatalf("GetPortfolioOnID() returned unexpected error: %v", err)
	}
	if got.Name != "Growth" || got.Description != "" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("Unexpected portfolio: %+v, want %+v", got, created)
	}

	if _, err := repo.GetPortfolioOnID(ctx, testutil.MakeID()); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
	}
}
