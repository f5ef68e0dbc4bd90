package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/validation"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
)

// ValuationHandler handles valuation, benchmark and allocation HTTP requests.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the valuationService.
type ValuationHandler struct {
	valuationService *service.ValuationService
}

// NewValuationHandler creates a new ValuationHandler
func NewValuationHandler(valuationService *service.ValuationService) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
	}
}

// Valuation handles GET requests to value a portfolio day by day.
//
// Endpoint: GET /api/portfolio/{uuid}/valuation?end_date=YYYY-MM-DD
// Response: 200 OK with model.PortfolioValuation
// Error: 400 Bad Request for a bad end_date, an empty ledger or an end before inception
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if prices are missing or a sell has no prior buy
// Error: 503 Service Unavailable if the valuation timed out
func (h *ValuationHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	dr, err := request.ParseDateRange("", r.URL.Query().Get("end_date"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid end_date", err.Error())
		return
	}

	result, err := h.valuationService.ValuePortfolio(r.Context(), chi.URLParam(r, "uuid"), dr.End)
	if err != nil {
		respondServiceError(w, "failed to value portfolio", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}

func toBenchmarkRequest(req request.BenchmarkRequest) service.BenchmarkRequest {
	// Dates were checked by validation.ValidateBenchmark
	var start, end time.Time
	if req.StartDate != "" {
		start, _ = request.ParseDate(req.StartDate)
	}
	if req.EndDate != "" {
		end, _ = request.ParseDate(req.EndDate)
	}
	return service.BenchmarkRequest{
		StartDate:           start,
		EndDate:             end,
		MonthlyContribution: *req.MonthlyContribution,
		Allocation:          req.Allocation,
	}
}

// PortfolioBenchmark handles POST requests to compare a portfolio against a
// dollar-cost-averaging benchmark. Start defaults to the portfolio's inception
// date, end to today and allocation to 100% SPY.
//
// Endpoint: POST /api/portfolio/{uuid}/benchmark
// Request Body: BenchmarkRequest (monthly_contribution, allocation?, start_date?, end_date?)
// Response: 200 OK with model.BenchmarkComparison
func (h *ValuationHandler) PortfolioBenchmark(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BenchmarkRequest](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateBenchmark(req, false); err != nil {
		respondServiceError(w, "validation failed", err)
		return
	}

	cmp, err := h.valuationService.Benchmark(r.Context(), chi.URLParam(r, "uuid"), toBenchmarkRequest(req))
	if err != nil {
		respondServiceError(w, "failed to project benchmark", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, cmp)
}

// Benchmark handles POST requests for a standalone dollar-cost-averaging projection.
//
// Endpoint: POST /api/benchmark
// Request Body: BenchmarkRequest (start_date, monthly_contribution, end_date?, allocation?)
// Response: 200 OK with model.BenchmarkComparison
func (h *ValuationHandler) Benchmark(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BenchmarkRequest](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateBenchmark(req, true); err != nil {
		respondServiceError(w, "validation failed", err)
		return
	}

	cmp, err := h.valuationService.ProjectBenchmark(r.Context(), toBenchmarkRequest(req))
	if err != nil {
		respondServiceError(w, "failed to project benchmark", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, cmp)
}

// NormalizeAllocation handles POST requests to validate an allocation and
// force it to sum to exactly 100.
//
// Endpoint: POST /api/allocation/normalize
// Request Body: {"TICKER": percentage, ...}
// Response: 200 OK with the normalized allocation
// Error: 400 Bad Request if the allocation is empty or a percentage is outside [0, 100]
func (h *ValuationHandler) NormalizeAllocation(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[map[string]float64](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	allocation, err := valuation.NormalizeAllocation(req)
	if err != nil {
		respondServiceError(w, "invalid allocation", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, allocation)
}
