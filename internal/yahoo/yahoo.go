package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// Client is the subset of the Yahoo Finance API the price service depends on.
type Client interface {
	QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	ParseChart(resp Response) (PriceChart, error)
}

// FinanceClient fetches daily chart data from Yahoo Finance.
type FinanceClient struct {
	client *resty.Client
}

// NewFinanceClient creates a client against baseURL. An empty baseURL uses
// DefaultBaseURL; a zero timeout leaves requests bounded only by their context.
func NewFinanceClient(baseURL string, timeout time.Duration) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &FinanceClient{client: client}
}

// QuerySymbolByDateRange fetches daily price data for a symbol within a date range.
//
// Parameters:
//   - ctx: Request context, used for cancellation
//   - symbol: Ticker symbol (e.g., "AAPL", "SPY")
//   - startDate: Beginning of date range (inclusive)
//   - endDate: End of date range (inclusive)
//
// Returns:
//   - Response: Raw API response containing price data for the range
//   - error: apperrors.ErrSymbolNotFound for unknown symbols, otherwise any
//     transport or decoding failure
func (c *FinanceClient) QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	var result Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"period1":  strconv.FormatInt(model.Day(startDate).Unix(), 10),
			// period2 is exclusive
			"period2": strconv.FormatInt(model.Day(endDate).AddDate(0, 0, 1).Unix(), 10),
		}).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&result).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return Response{}, fmt.Errorf("yahoo request for %s failed: %w", symbol, err)
	}

	if result.Chart.Error != nil {
		if resp.StatusCode() == http.StatusNotFound || result.Chart.Error.Code == "Not Found" {
			return Response{}, fmt.Errorf("%w: %s: %s", apperrors.ErrSymbolNotFound, symbol, result.Chart.Error.Description)
		}
		return Response{}, fmt.Errorf("yahoo error for %s: %s", symbol, result.Chart.Error.Description)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusNotFound {
			return Response{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
		}
		return Response{}, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode(), symbol)
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: no results returned for symbol %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return result, nil
}

// ParseChart converts a raw response into a PriceChart.
//
// The method performs validation to ensure:
//   - A result with timestamp data is present
//   - Close price data is present and aligned with the timestamps
//
// Days with a null close are skipped.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no chart result returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	loc := time.UTC
	if result.Meta.ExchangeTimezone != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezone); err == nil {
			loc = l
		}
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		ind := Indicators{
			Date:       model.Day(time.Unix(ts, 0).In(loc)),
			PriceClose: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			ind.Volume = *quote.Volume[i]
		}
		indicators = append(indicators, ind)
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       indicators,
	}, nil
}

// PricePoints returns the chart's closes as price points.
func (c PriceChart) PricePoints() []model.PricePoint {
	points := make([]model.PricePoint, len(c.Indicators))
	for i, ind := range c.Indicators {
		points[i] = model.PricePoint{Date: ind.Date, Close: ind.PriceClose}
	}
	return points
}
