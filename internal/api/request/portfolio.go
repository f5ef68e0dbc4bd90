package request

import "github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddOrdersRequest represents the request body for appending orders to a
// portfolio. Fields follow the order upload format: date, type, ticker,
// shares and price_per_share. Numbers may be sent as JSON numbers or strings.
type AddOrdersRequest struct {
	Orders []model.RawOrder `json:"orders"`
}
