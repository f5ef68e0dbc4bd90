package validation_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/validation"
)

func TestValidateUUID(t *testing.T) {
	if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := validation.ValidateUUID("not-a-uuid"); !errors.Is(err, apperrors.ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, s := range []string{"AAPL", "BRK-B", "^GSPC", "EURUSD=X", "VWCE.DE"} {
		if err := validation.ValidateSymbol(s); err != nil {
			t.Errorf("Expected %q to be valid, got %v", s, err)
		}
	}
	for _, s := range []string{"", "../etc", "AA PL", "A/B"} {
		if err := validation.ValidateSymbol(s); err == nil {
			t.Errorf("Expected %q to be rejected", s)
		}
	}
}

// TestValidateBenchmark tests benchmark request validation.
//
// WHY: The standalone projection has no portfolio to default from, so its
// start date is mandatory, while the portfolio comparison may omit it.
func TestValidateBenchmark(t *testing.T) {
	monthly := 100.0
	negative := -1.0

	tests := []struct {
		name         string
		req          request.BenchmarkRequest
		requireStart bool
		wantFields   []string
	}{
		{name: "valid", req: request.BenchmarkRequest{StartDate: "2025-01-02", MonthlyContribution: &monthly}, requireStart: true},
		{name: "portfolio comparison without start", req: request.BenchmarkRequest{MonthlyContribution: &monthly}},
		{name: "missing contribution", req: request.BenchmarkRequest{StartDate: "2025-01-02"}, wantFields: []string{"monthly_contribution"}},
		{name: "negative contribution", req: request.BenchmarkRequest{MonthlyContribution: &negative}, wantFields: []string{"monthly_contribution"}},
		{name: "missing start", req: request.BenchmarkRequest{MonthlyContribution: &monthly}, requireStart: true, wantFields: []string{"start_date"}},
		{name: "bad end", req: request.BenchmarkRequest{MonthlyContribution: &monthly, EndDate: "soon"}, wantFields: []string{"end_date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateBenchmark(tt.req, tt.requireStart)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *validation.Error, got %v", err)
			}
			for _, f := range tt.wantFields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("Expected field %s in %v", f, verr.Fields)
				}
			}
		})
	}
}
