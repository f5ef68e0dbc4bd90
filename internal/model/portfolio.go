package model

import "time"

// Portfolio represents a portfolio from the database.
// A portfolio owns an order ledger; its value is always derived, never stored.
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PortfolioValuation is the result of replaying a portfolio's ledger up to a cutoff date.
type PortfolioValuation struct {
	PortfolioID   string      `json:"portfolioId"`
	InceptionDate string      `json:"inceptionDate"`
	ValuationEnd  string      `json:"valuationEnd"`
	Series        ValueSeries `json:"series"`
	Allocation    Allocation  `json:"allocation,omitempty"`
}

// BenchmarkComparison overlays a portfolio's own value series with a projected
// dollar-cost-averaging benchmark over the same range.
type BenchmarkComparison struct {
	PortfolioID         string      `json:"portfolioId,omitempty"`
	StartDate           string      `json:"startDate"`
	EndDate             string      `json:"endDate"`
	MonthlyContribution float64     `json:"monthlyContribution"`
	Allocation          Allocation  `json:"allocation"`
	Benchmark           ValueSeries `json:"benchmark"`
	Portfolio           ValueSeries `json:"portfolio,omitempty"`
}
