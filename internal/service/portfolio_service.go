package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
)

// PortfolioService handles portfolio and order ledger business logic.
// Orders enter the ledger only through strict normalization, so stored orders
// always have a known side, a calendar date and positive quantity and price.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	orderRepo     *repository.OrderRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	orderRepo *repository.OrderRepository,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		orderRepo:     orderRepo,
	}
}

// CreatePortfolio stores a new, empty portfolio.
//
// Parameters:
//   - ctx: Request context
//   - name: Display name, trimmed
//   - description: Optional free text, trimmed
//
// Returns the created portfolio with its generated ID.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, name, description string) (model.Portfolio, error) {
	p := model.Portfolio{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.portfolioRepo.CreatePortfolio(ctx, p); err != nil {
		return model.Portfolio{}, err
	}
	log.Info().Str("portfolio_id", p.ID).Str("name", p.Name).Msg("created portfolio")
	return p, nil
}

// GetPortfolio retrieves a single portfolio. Returns apperrors.ErrPortfolioNotFound
// if it does not exist.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
}

// ListPortfolios retrieves all portfolios.
func (s *PortfolioService) ListPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(ctx)
}

// AddOrders validates raw orders and appends them to a portfolio's ledger.
//
// The batch is normalized strictly: any record with a missing field, an
// unknown type, an unparsable date or a non-positive quantity or price rejects
// the whole batch and nothing is stored. Accepted orders are stored sorted by
// date; same-day orders keep their order within the batch.
//
// Parameters:
//   - ctx: Request context
//   - portfolioID: Target portfolio
//   - raw: Order records as received
//
// Returns:
//   - []model.StoredOrder: The stored orders with IDs and sequence numbers
//   - error: apperrors.ErrPortfolioNotFound, a normalization error
//     (ErrEmptyLedger, ErrMalformedOrder, ErrInvalidOrder) or a storage failure
func (s *PortfolioService) AddOrders(ctx context.Context, portfolioID string, raw []model.RawOrder) ([]model.StoredOrder, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}

	ledger, err := valuation.NormalizeOrders(raw, valuation.NormalizeOptions{RejectNonPositive: true})
	if err != nil {
		return nil, err
	}

	stored, err := s.orderRepo.InsertOrders(ctx, portfolioID, ledger.Orders)
	if err != nil {
		return nil, fmt.Errorf("failed to store orders: %w", err)
	}
	log.Info().Str("portfolio_id", portfolioID).Int("orders", len(stored)).Msg("added orders")
	return stored, nil
}

// GetOrders returns a portfolio's ledger sorted earliest to latest.
func (s *PortfolioService) GetOrders(ctx context.Context, portfolioID string) ([]model.StoredOrder, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrders(ctx, portfolioID)
}
