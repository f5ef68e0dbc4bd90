package yahoo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL", "exchangeName": "NMS", "fullExchangeName": "NasdaqGS", "longName": "Apple Inc.", "shortName": "Apple Inc.", "exchangeTimezoneName": "UTC"},
      "timestamp": [1735914600, 1736173800, 1736260200],
      "indicators": {"quote": [{
        "open":   [243.36, 244.31, 242.98],
        "close":  [243.36, null, 242.21],
        "high":   [244.18, 247.33, 245.55],
        "low":    [241.89, 243.20, 241.35],
        "volume": [40244100, null, 40855000]
      }]}
    }],
    "error": null
  }
}`

// TestFinanceClient_QuerySymbolByDateRange tests the chart request against a fake Yahoo server.
//
// WHY: Yahoo is the only source of new prices. The request must hit the chart
// endpoint with an inclusive day range, and unknown symbols must be reported as
// such instead of as a generic failure.
func TestFinanceClient_QuerySymbolByDateRange(t *testing.T) {
	t.Run("parses a chart response", func(t *testing.T) {
		var gotPath, gotPeriod1, gotPeriod2, gotInterval string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotPeriod1 = r.URL.Query().Get("period1")
			gotPeriod2 = r.URL.Query().Get("period2")
			gotInterval = r.URL.Query().Get("interval")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(chartBody))
		}))
		defer srv.Close()

		client := yahoo.NewFinanceClient(srv.URL, time.Second)
		start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

		resp, err := client.QuerySymbolByDateRange(context.Background(), "AAPL", start, end)
		if err != nil {
			t.Fatalf("QuerySymbolByDateRange() returned unexpected error: %v", err)
		}

		if gotPath != "/v8/finance/chart/AAPL" {
			t.Errorf("Expected chart path, got %s", gotPath)
		}
		if gotInterval != "1d" {
			t.Errorf("Expected interval 1d, got %s", gotInterval)
		}
		if gotPeriod1 != "1735862400" || gotPeriod2 != "1736294400" {
			t.Errorf("Expected period 1735862400..1736294400, got %s..%s", gotPeriod1, gotPeriod2)
		}

		chart, err := client.ParseChart(resp)
		if err != nil {
			t.Fatalf("ParseChart() returned unexpected error: %v", err)
		}
		if chart.Symbol != "AAPL" || chart.Currency != "USD" {
			t.Errorf("Unexpected metadata: %+v", chart)
		}
		points := chart.PricePoints()
		if len(points) != 2 {
			t.Fatalf("Expected the null close to be skipped (2 points), got %d", len(points))
		}
		if model.DateKey(points[0].Date) != "2025-01-03" || points[0].Close != 243.36 {
			t.Errorf("Unexpected first point: %+v", points[0])
		}
		if model.DateKey(points[1].Date) != "2025-01-07" || points[1].Close != 242.21 {
			t.Errorf("Unexpected second point: %+v", points[1])
		}
		if last := chart.Indicators[len(chart.Indicators)-1]; !last.Date.Equal(end) || last.Volume != 40855000 {
			t.Errorf("Expected last indicator on 2025-01-07 with volume, got %+v", last)
		}
	})

	t.Run("unknown symbol", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		}))
		defer srv.Close()

		client := yahoo.NewFinanceClient(srv.URL, time.Second)
		_, err := client.QuerySymbolByDateRange(context.Background(), "NOPE", time.Now(), time.Now())
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
		}))
		defer srv.Close()

		client := yahoo.NewFinanceClient(srv.URL, time.Second)
		_, err := client.QuerySymbolByDateRange(context.Background(), "EMPTY", time.Now(), time.Now())
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(chartBody))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := yahoo.NewFinanceClient(srv.URL, time.Second)
		if _, err := client.QuerySymbolByDateRange(ctx, "AAPL", time.Now(), time.Now()); err == nil {
			t.Error("Expected error for cancelled context")
		}
	})
}

// TestFinanceClient_ParseChart tests validation of malformed responses.
//
// WHY: Yahoo occasionally returns partial payloads. They must be rejected rather
// than stored as half a price history.
func TestFinanceClient_ParseChart(t *testing.T) {
	client := yahoo.NewFinanceClient("", 0)
	price := 10.0

	tests := []struct {
		name string
		resp yahoo.Response
	}{
		{name: "no result", resp: yahoo.Response{}},
		{name: "no timestamps", resp: yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{{}}}}},
		{
			name: "no closes",
			resp: yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{{Timestamp: []int64{1}}}}},
		},
		{
			name: "mismatched lengths",
			resp: yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{{
				Timestamp: []int64{1, 2},
				Indicators: yahoo.IndicatorsContainer{Quote: []yahoo.Quote{{
					Close: []*float64{&price},
				}}},
			}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.ParseChart(tt.resp); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
