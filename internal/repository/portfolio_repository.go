package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// CreatePortfolio inserts a new portfolio row. The caller assigns the ID and CreatedAt.
func (s *PortfolioRepository) CreatePortfolio(ctx context.Context, p model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, formatTimestamp(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// GetPortfolios retrieves all portfolios ordered by creation time.
// Returns an empty slice if there are none.
func (s *PortfolioRepository) GetPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, name, description, created_at
		FROM portfolio
		ORDER BY created_at ASC, name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}

	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio. Returns apperrors.ErrPortfolioNotFound
// if the ID does not exist.
func (s *PortfolioRepository) GetPortfolioOnID(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	query := `
		SELECT id, name, description, created_at
		FROM portfolio
		WHERE id = ?
	`

	p, err := scanPortfolio(s.db.QueryRowContext(ctx, query, portfolioID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(row scanner) (model.Portfolio, error) {
	var (
		p           model.Portfolio
		description sql.NullString
		createdAt   string
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, err
		}
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	p.Description = description.String

	t, err := ParseTime(createdAt)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse portfolio created_at: %w", err)
	}
	p.CreatedAt = t
	return p, nil
}
