package service

import (
	"context"
	"fmt"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
)

// LedgerLoader loads a portfolio together with its stored orders as a ledger
// ready for replay. It is shared by every operation that values a portfolio.
type LedgerLoader struct {
	portfolioRepo *repository.PortfolioRepository
	orderRepo     *repository.OrderRepository
}

// NewLedgerLoader creates a new LedgerLoader with the provided repositories.
func NewLedgerLoader(portfolioRepo *repository.PortfolioRepository, orderRepo *repository.OrderRepository) *LedgerLoader {
	return &LedgerLoader{portfolioRepo: portfolioRepo, orderRepo: orderRepo}
}

// PortfolioLedger is a portfolio and its replayable orders.
type PortfolioLedger struct {
	Portfolio model.Portfolio
	Ledger    valuation.Ledger
}

// Load retrieves the portfolio and its orders.
//
// Returns:
//   - PortfolioLedger: The portfolio with its orders sorted by date, then insertion sequence
//   - error: apperrors.ErrPortfolioNotFound, apperrors.ErrEmptyLedger when the
//     portfolio has no orders, or a storage failure
func (l *LedgerLoader) Load(ctx context.Context, portfolioID string) (PortfolioLedger, error) {
	portfolio, err := l.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return PortfolioLedger{}, err
	}

	stored, err := l.orderRepo.GetOrders(ctx, portfolioID)
	if err != nil {
		return PortfolioLedger{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveOrders, err)
	}

	orders := make([]model.Order, len(stored))
	for i, so := range stored {
		orders[i] = so.Order
	}
	ledger, err := valuation.NewLedger(orders)
	if err != nil {
		return PortfolioLedger{}, err
	}
	return PortfolioLedger{Portfolio: portfolio, Ledger: ledger}, nil
}
