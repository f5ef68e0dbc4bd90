package request

// BenchmarkRequest represents the request body for a dollar-cost-averaging
// projection. Dates are YYYY-MM-DD. A missing allocation means 100% SPY.
type BenchmarkRequest struct {
	StartDate           string             `json:"start_date"`
	EndDate             string             `json:"end_date"`
	MonthlyContribution *float64           `json:"monthly_contribution"`
	Allocation          map[string]float64 `json:"allocation"`
}
