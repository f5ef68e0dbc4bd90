package flatfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/flatfile"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// TestReadPrices tests parsing of downloaded price history files.
//
// WHY: Price files come from different download tools. Extra columns, time
// suffixes on dates and missing closes must not break a valuation.
func TestReadPrices(t *testing.T) {
	t.Run("yfinance layout", func(t *testing.T) {
		in := "Date,Open,High,Low,Close,Adj Close,Volume\n" +
			"2025-01-03 00:00:00-05:00,243.36,244.18,241.89,243.36,242.80,40244100\n" +
			"2025-01-06 00:00:00-05:00,244.31,247.33,243.20,null,,45045600\n" +
			"2025-01-07 00:00:00-05:00,242.98,245.55,241.35,242.21,241.65,40855000\n"

		points, err := flatfile.ReadPrices(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadPrices() returned unexpected error: %v", err)
		}
		if len(points) != 2 {
			t.Fatalf("Expected 2 points, got %d", len(points))
		}
		if model.DateKey(points[0].Date) != "2025-01-03" || points[0].Close != 243.36 {
			t.Errorf("Unexpected first point %+v", points[0])
		}
		if model.DateKey(points[1].Date) != "2025-01-07" || points[1].Close != 242.21 {
			t.Errorf("Unexpected second point %+v", points[1])
		}
	})

	t.Run("missing close column", func(t *testing.T) {
		if _, err := flatfile.ReadPrices(strings.NewReader("Date,Open\n2025-01-03,1\n")); err == nil {
			t.Error("Expected error for missing Close column")
		}
	})

	t.Run("bad close", func(t *testing.T) {
		if _, err := flatfile.ReadPrices(strings.NewReader("Date,Close\n2025-01-03,abc\n")); err == nil {
			t.Error("Expected error for unparsable close")
		}
	})
}

// TestPriceDir tests the directory-backed price source.
//
// WHY: The CLI values portfolios entirely from a price directory. A missing file
// must surface as unavailable data, and saved files must read back unchanged.
func TestPriceDir(t *testing.T) {
	dir := t.TempDir()
	prices := flatfile.NewPriceDir(dir)
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := prices.LoadPrices(ctx, "AAPL")
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		_, err := prices.LoadPrices(ctx, "../etc/passwd")
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		in := []model.PricePoint{
			{Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Close: 243.36},
			{Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), Close: 245},
		}
		if err := prices.SavePrices("AAPL", in); err != nil {
			t.Fatalf("SavePrices() returned unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "AAPL.csv")); err != nil {
			t.Fatalf("Expected AAPL.csv to exist: %v", err)
		}

		out, err := prices.LoadPrices(ctx, "AAPL")
		if err != nil {
			t.Fatalf("LoadPrices() returned unexpected error: %v", err)
		}
		if len(out) != 2 || out[0].Close != 243.36 || out[1].Close != 245 || !out[1].Date.Equal(in[1].Date) {
			t.Errorf("Round trip mismatch: %+v", out)
		}
	})
}

// TestReadOrders tests parsing of the orders export.
//
// WHY: The orders file is hand edited. Header case and column order vary, and
// blank cells must reach the normalizer as missing fields.
func TestReadOrders(t *testing.T) {
	t.Run("parses rows", func(t *testing.T) {
		in := "Ticker,Date,TYPE,Shares,Price_Per_Share\n" +
			"AAPL,2025-01-03,BUY,50,248.94\n" +
			"JPM,2025-01-06,buy,50,\n"

		orders, err := flatfile.ReadOrders(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadOrders() returned unexpected error: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("Expected 2 orders, got %d", len(orders))
		}
		first := orders[0]
		if first.Instrument != "AAPL" || first.Date != "2025-01-03" || first.Side != "BUY" {
			t.Errorf("Unexpected first order %+v", first)
		}
		if !first.UnitPrice.Valid || first.UnitPrice.Decimal.String() != "248.94" {
			t.Errorf("Expected price 248.94, got %v", first.UnitPrice)
		}
		if orders[1].UnitPrice.Valid {
			t.Error("Expected blank price to be left missing")
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := flatfile.ReadOrders(strings.NewReader("Date,Ticker\n2025-01-03,AAPL\n"))
		if err == nil || !strings.Contains(err.Error(), "type") {
			t.Errorf("Expected missing column error naming type, got %v", err)
		}
	})

	t.Run("bad number", func(t *testing.T) {
		in := "Date,Type,Ticker,Shares,Price_Per_Share\n2025-01-03,BUY,AAPL,fifty,1\n"
		if _, err := flatfile.ReadOrders(strings.NewReader(in)); err == nil {
			t.Error("Expected error for unparsable shares")
		}
	})
}
