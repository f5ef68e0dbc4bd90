package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// PriceRepository provides data access methods for the instrument_price table.
// It is the database-backed price source used by valuations.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// UpsertPrices inserts closes, replacing the close and source of any existing
// (instrument, date) row. Returns the number of rows written.
func (s *PriceRepository) UpsertPrices(ctx context.Context, prices []model.InstrumentPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO instrument_price (id, instrument, date, close, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(instrument, date) DO UPDATE SET close = excluded.close, source = excluded.source
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, p.Instrument, model.DateKey(p.Date), p.Close, p.Source); err != nil {
			return 0, fmt.Errorf("failed to upsert price %s %s: %w", p.Instrument, model.DateKey(p.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prices: %w", err)
	}
	return len(prices), nil
}

// GetPrices retrieves stored closes for an instrument in [startDate, endDate],
// sorted by date. A zero startDate or endDate leaves that side unbounded.
func (s *PriceRepository) GetPrices(ctx context.Context, instrument string, startDate, endDate time.Time) ([]model.InstrumentPrice, error) {
	query := `
		SELECT id, instrument, date, close, source
		FROM instrument_price
		WHERE instrument = ?
	`
	args := []any{instrument}
	if !startDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, model.DateKey(startDate))
	}
	if !endDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, model.DateKey(endDate))
	}
	query += " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instrument_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.InstrumentPrice{}
	for rows.Next() {
		var (
			p    model.InstrumentPrice
			date string
		)
		if err := rows.Scan(&p.ID, &p.Instrument, &date, &p.Close, &p.Source); err != nil {
			return nil, fmt.Errorf("failed to scan instrument_price results: %w", err)
		}
		if p.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse price date: %w", err)
		}
		prices = append(prices, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instrument_price table: %w", err)
	}
	return prices, nil
}

// GetLatestPriceDate returns the most recent stored date for an instrument.
// The boolean is false when no price is stored.
func (s *PriceRepository) GetLatestPriceDate(ctx context.Context, instrument string) (time.Time, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM instrument_price WHERE instrument = ?`, instrument,
	).Scan(&date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest price date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, false, nil
	}
	d, err := model.ParseDate(date.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse latest price date: %w", err)
	}
	return d, true, nil
}

// GetCoverage counts stored instruments and closes and reports the most recent date.
func (s *PriceRepository) GetCoverage(ctx context.Context) (model.PriceCoverage, error) {
	var (
		c      model.PriceCoverage
		latest sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT instrument), COUNT(*), MAX(date) FROM instrument_price`,
	).Scan(&c.Instruments, &c.Closes, &latest)
	if err != nil {
		return model.PriceCoverage{}, fmt.Errorf("failed to query price coverage: %w", err)
	}
	if latest.Valid {
		c.LatestPriceDate = latest.String
	}
	return c, nil
}

// LoadPrices returns the full stored history of an instrument as price points.
// It fails with apperrors.ErrDataUnavailable when nothing is stored.
func (s *PriceRepository) LoadPrices(ctx context.Context, instrument string) ([]model.PricePoint, error) {
	stored, err := s.GetPrices(ctx, instrument, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("%w: no stored prices for %s", apperrors.ErrDataUnavailable, instrument)
	}
	points := make([]model.PricePoint, len(stored))
	for i, p := range stored {
		points[i] = model.PricePoint{Date: p.Date, Close: p.Close}
	}
	return points, nil
}
