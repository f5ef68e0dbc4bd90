package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/validation"
)

// PortfolioHandler handles portfolio and order ledger HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// PortfoliosResponse represents a portfolio in API responses
type PortfoliosResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func toPortfolioResponse(p model.Portfolio) PortfoliosResponse {
	return PortfoliosResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// OrderResponse represents a stored order in API responses
type OrderResponse struct {
	ID            string  `json:"id"`
	Sequence      int64   `json:"sequence"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Ticker        string  `json:"ticker"`
	Shares        float64 `json:"shares"`
	PricePerShare float64 `json:"price_per_share"`
}

func toOrderResponses(orders []model.StoredOrder) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, so := range orders {
		out[i] = OrderResponse{
			ID:            so.ID,
			Sequence:      so.Sequence,
			Date:          model.DateKey(so.Order.Date),
			Type:          string(so.Order.Side),
			Ticker:        so.Order.Instrument,
			Shares:        so.Order.Quantity,
			PricePerShare: so.Order.UnitPrice,
		}
	}
	return out
}

// Portfolios handles GET requests to list all portfolios.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of PortfoliosResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.ListPortfolios(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePortfolios.Error(), err.Error())
		return
	}

	out := make([]PortfoliosResponse, len(portfolios))
	for i, p := range portfolios {
		out[i] = toPortfolioResponse(p)
	}
	response.RespondJSON(w, http.StatusOK, out)
}

// GetPortfolio handles GET requests to retrieve a single portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with PortfoliosResponse
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "failed to retrieve portfolio", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, toPortfolioResponse(p))
}

// CreatePortfolio handles POST requests to create a new, empty portfolio.
//
// Endpoint: POST /api/portfolio
// Request Body: CreatePortfolioRequest (name, description)
// Response: 201 Created with PortfoliosResponse
// Error: 400 Bad Request if validation fails or request body is invalid
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, "validation failed", err)
		return
	}

	p, err := h.portfolioService.CreatePortfolio(r.Context(), req.Name, req.Description)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create portfolio", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, toPortfolioResponse(p))
}

// Orders handles GET requests for a portfolio's ledger, earliest order first.
//
// Endpoint: GET /api/portfolio/{uuid}/orders
// Response: 200 OK with array of OrderResponse
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.portfolioService.GetOrders(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveOrders.Error(), err)
		return
	}
	response.RespondJSON(w, http.StatusOK, toOrderResponses(orders))
}

// AddOrders handles POST requests to append orders to a portfolio's ledger.
// The batch is all-or-nothing.
//
// Endpoint: POST /api/portfolio/{uuid}/orders
// Request Body: AddOrdersRequest ({orders: [{date, type, ticker, shares, price_per_share}]})
// Response: 201 Created with array of OrderResponse
// Error: 400 Bad Request if any order is malformed or not positive
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) AddOrders(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddOrdersRequest](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	stored, err := h.portfolioService.AddOrders(r.Context(), chi.URLParam(r, "uuid"), req.Orders)
	if err != nil {
		respondServiceError(w, "failed to add orders", err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, toOrderResponses(stored))
}
