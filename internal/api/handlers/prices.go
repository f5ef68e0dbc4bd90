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
)

// PriceHandler handles stored price HTTP requests
type PriceHandler struct {
	priceService *service.PriceService
	lookbackDays int
	now          func() time.Time
}

// NewPriceHandler creates a new PriceHandler. A refresh without start_date
// covers the last lookbackDays days.
func NewPriceHandler(priceService *service.PriceService, lookbackDays int) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// PriceResponse is one stored close
type PriceResponse struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Source string  `json:"source"`
}

// PricesResponse is a symbol's stored closes
type PricesResponse struct {
	Symbol string          `json:"symbol"`
	Prices []PriceResponse `json:"prices"`
}

// RefreshResponse reports a manual refresh
type RefreshResponse struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Stored    int    `json:"stored"`
}

// Prices handles GET requests for stored closes.
//
// Endpoint: GET /api/prices/{symbol}?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
// Response: 200 OK with PricesResponse
// Error: 400 Bad Request if the dates are invalid
// Error: 404 Not Found if no close is stored in the range
func (h *PriceHandler) Prices(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	dr, err := request.ParseDateRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	prices, err := h.priceService.GetPrices(r.Context(), symbol, dr.Start, dr.End)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrievePrices.Error(), err)
		return
	}

	out := PricesResponse{Symbol: symbol, Prices: make([]PriceResponse, len(prices))}
	for i, p := range prices {
		out.Prices[i] = PriceResponse{Date: model.DateKey(p.Date), Close: p.Close, Source: p.Source}
	}
	response.RespondJSON(w, http.StatusOK, out)
}

// RefreshPrices handles POST requests to fetch closes from Yahoo Finance and
// store them. end_date defaults to today and start_date to lookbackDays earlier.
//
// Endpoint: POST /api/prices/{symbol}/refresh?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
// Response: 200 OK with RefreshResponse
// Error: 404 Not Found if Yahoo does not know the symbol
// Error: 500 Internal Server Error if the fetch or store fails
func (h *PriceHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	dr, err := request.ParseDateRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}
	if dr.End.IsZero() {
		dr.End = model.Day(h.now().UTC())
	}
	if dr.Start.IsZero() {
		dr.Start = dr.End.AddDate(0, 0, -h.lookbackDays)
	}

	n, err := h.priceService.Refresh(r.Context(), symbol, dr.Start, dr.End)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRefreshPrices.Error(), err)
		return
	}
	response.RespondJSON(w, http.StatusOK, RefreshResponse{
		Symbol:    symbol,
		StartDate: model.DateKey(dr.Start),
		EndDate:   model.DateKey(dr.End),
		Stored:    n,
	})
}
