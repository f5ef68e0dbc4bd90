package validation

import (
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/request"
)

// ValidateCreatePortfolio validates a portfolio creation request.
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	// Optional but has constraints
	if len(req.Description) > 500 {
		errors["description"] = "description must be 500 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateBenchmark validates the shape of a benchmark request. Allocation
// percentages are checked by the valuation layer.
//
// Required fields:
//   - monthly_contribution: Must be present and not negative
//   - start_date: Required only when requireStart is set
//   - start_date/end_date: Must be YYYY-MM-DD or RFC3339 if provided
func ValidateBenchmark(req request.BenchmarkRequest, requireStart bool) error {
	errors := make(map[string]string)

	if req.MonthlyContribution == nil {
		errors["monthly_contribution"] = "monthly_contribution is required"
	} else if *req.MonthlyContribution < 0 {
		errors["monthly_contribution"] = "monthly_contribution must not be negative"
	}

	if requireStart && strings.TrimSpace(req.StartDate) == "" {
		errors["start_date"] = "start_date is required"
	} else if req.StartDate != "" {
		if _, err := request.ParseDate(req.StartDate); err != nil {
			errors["start_date"] = err.Error()
		}
	}
	if req.EndDate != "" {
		if _, err := request.ParseDate(req.EndDate); err != nil {
			errors["end_date"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
