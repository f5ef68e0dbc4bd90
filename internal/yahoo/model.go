package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays; entries are null on days
//     Yahoo has a timestamp but no quote
//   - Chart.Error: Optional error object from Yahoo
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart envelope.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the error object Yahoo returns for unknown or delisted symbols.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is one symbol's chart data.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta is symbol metadata.
type Meta struct {
	Currency         string `json:"currency"`
	Symbol           string `json:"symbol"`
	ExchangeName     string `json:"exchangeName"`
	FullExchangeName string `json:"fullExchangeName"`
	LongName         string `json:"longName"`
	Shortname        string `json:"shortName"`
	ExchangeTimezone string `json:"exchangeTimezoneName"`
}

// IndicatorsContainer holds the quote arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds parallel OHLCV arrays aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// PriceChart is the parsed form of a Response.
type PriceChart struct {
	Currency         string       `json:"currency"`
	Symbol           string       `json:"symbol"`
	ExchangeName     string       `json:"exchangeName"`
	FullExchangeName string       `json:"fullExchangeName"`
	LongName         string       `json:"longName"`
	Shortname        string       `json:"shortName"`
	Indicators       []Indicators `json:"indicators"`
}

// Indicators is a single trading day's close. Date is midnight UTC of the
// exchange-local trading date.
type Indicators struct {
	Date       time.Time
	PriceClose float64
	Volume     int64
}
