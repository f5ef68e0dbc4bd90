package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// OrderRepository provides data access methods for the portfolio_order table.
// Orders are append-only; the sequence column preserves insertion order so
// same-day orders replay in the order they were recorded.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository with the provided database connection.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InsertOrders appends orders to a portfolio's ledger in a single transaction.
// Either every order is stored or none is.
func (s *OrderRepository) InsertOrders(ctx context.Context, portfolioID string, orders []model.Order) ([]model.StoredOrder, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) FROM portfolio_order WHERE portfolio_id = ?`,
		portfolioID,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("failed to query order sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO portfolio_order (id, portfolio_id, sequence, date, type, instrument, shares, price_per_share, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare order insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	stored := make([]model.StoredOrder, 0, len(orders))
	for _, o := range orders {
		next++
		so := model.StoredOrder{
			ID:          uuid.New().String(),
			PortfolioID: portfolioID,
			Sequence:    next,
			Order:       o,
			CreatedAt:   now,
		}
		_, err := stmt.ExecContext(ctx,
			so.ID, portfolioID, so.Sequence,
			model.DateKey(o.Date), string(o.Side), o.Instrument, o.Quantity, o.UnitPrice,
			formatTimestamp(now),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order %d: %w", next, err)
		}
		stored = append(stored, so)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit orders: %w", err)
	}
	return stored, nil
}

// GetOrders retrieves a portfolio's ledger ordered by date, then insertion sequence.
// Returns an empty slice if the portfolio has no orders.
func (s *OrderRepository) GetOrders(ctx context.Context, portfolioID string) ([]model.StoredOrder, error) {
	query := `
		SELECT id, portfolio_id, sequence, date, type, instrument, shares, price_per_share, created_at
		FROM portfolio_order
		WHERE portfolio_id = ?
		ORDER BY date ASC, sequence ASC
	`

	rows, err := s.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_order table: %w", err)
	}
	defer rows.Close()

	orders := []model.StoredOrder{}
	for rows.Next() {
		var (
			so        model.StoredOrder
			date      string
			side      string
			createdAt string
		)
		err := rows.Scan(
			&so.ID,
			&so.PortfolioID,
			&so.Sequence,
			&date,
			&side,
			&so.Order.Instrument,
			&so.Order.Quantity,
			&so.Order.UnitPrice,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio_order results: %w", err)
		}

		if so.Order.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse order date: %w", err)
		}
		so.Order.Side = model.Side(side)
		if so.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse order created_at: %w", err)
		}
		orders = append(orders, so)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_order table: %w", err)
	}
	return orders, nil
}

// GetInstrumentFirstDates returns every instrument referenced by any order with
// the date of its earliest order, sorted by instrument.
func (s *OrderRepository) GetInstrumentFirstDates(ctx context.Context) ([]model.InstrumentSince, error) {
	query := `
		SELECT instrument, MIN(date)
		FROM portfolio_order
		GROUP BY instrument
		ORDER BY instrument ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query order instruments: %w", err)
	}
	defer rows.Close()

	instruments := []model.InstrumentSince{}
	for rows.Next() {
		var (
			is   model.InstrumentSince
			date string
		)
		if err := rows.Scan(&is.Instrument, &date); err != nil {
			return nil, fmt.Errorf("failed to scan order instrument: %w", err)
		}
		if is.FirstDate, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse first order date: %w", err)
		}
		instruments = append(instruments, is)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order instruments: %w", err)
	}
	return instruments, nil
}
