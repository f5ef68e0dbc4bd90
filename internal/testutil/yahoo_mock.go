package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data instead of making actual API calls.
type MockYahooClient struct {
	mu sync.Mutex
	// MockResponse is the response to return from query methods
	MockResponse yahoo.Response
	// MockError is the error to return from query methods
	MockError error
	// SymbolErrors overrides MockError per symbol
	SymbolErrors map[string]error
	// Queries records every query in call order
	Queries []MockQuery
}

// MockQuery is one recorded QuerySymbolByDateRange call.
type MockQuery struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
}

// NewMockYahooClient creates a new mock Yahoo client returning five weekdays
// of closes starting 2025-01-06.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		MockResponse: CreateMockYahooResponse(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 5),
		SymbolErrors: map[string]error{},
	}
}

// QuerySymbolByDateRange mocks the date range query with predefined test data.
// It returns the configured MockResponse and MockError.
func (m *MockYahooClient) QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, MockQuery{Symbol: symbol, StartDate: startDate, EndDate: endDate})
	if err := ctx.Err(); err != nil {
		return yahoo.Response{}, err
	}
	if err, ok := m.SymbolErrors[symbol]; ok {
		return yahoo.Response{}, err
	}
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient("", 0).ParseChart(yahooResult)
}

// QueryCount returns how many queries were made.
func (m *MockYahooClient) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithSymbolError configures the mock to fail for one symbol only.
func (m *MockYahooClient) WithSymbolError(symbol string, err error) *MockYahooClient {
	m.SymbolErrors[symbol] = err
	return m
}

// WithResponse configures the mock to return the specified response.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

// CreateMockYahooResponse creates a mock Yahoo Finance API response with
// `days` weekdays of data starting at start. The close on the i-th weekday
// is 100 + i.
func CreateMockYahooResponse(start time.Time, days int) yahoo.Response {
	timestamps := make([]int64, 0, days)
	opens := make([]*float64, 0, days)
	highs := make([]*float64, 0, days)
	lows := make([]*float64, 0, days)
	closes := make([]*float64, 0, days)
	volumes := make([]*int64, 0, days)

	// 14:30 UTC is market open
	date := time.Date(start.Year(), start.Month(), start.Day(), 14, 30, 0, 0, time.UTC)
	for i := 0; len(timestamps) < days; date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		dayPrice := 100.0 + float64(i)
		open := dayPrice - 0.5
		high := dayPrice + 1.0
		low := dayPrice - 1.0
		closePrice := dayPrice
		volume := int64(1000000 + i*10000)

		timestamps = append(timestamps, date.Unix())
		opens = append(opens, &open)
		highs = append(highs, &high)
		lows = append(lows, &low)
		closes = append(closes, &closePrice)
		volumes = append(volumes, &volume)
		i++
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:           "TEST",
						Currency:         "USD",
						ExchangeName:     "NMS",
						FullExchangeName: "NASDAQ",
						LongName:         "Test Instrument Inc.",
						Shortname:        "TEST",
						ExchangeTimezone: "UTC",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
			Error: nil,
		},
	}
}
