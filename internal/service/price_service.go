package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

// PriceSourceYahoo marks prices fetched from Yahoo Finance.
const PriceSourceYahoo = "yahoo"

// PriceService keeps the stored price history current.
type PriceService struct {
	priceRepo    *repository.PriceRepository
	orderRepo    *repository.OrderRepository
	yahooClient  yahoo.Client
	lookbackDays int
}

// NewPriceService creates a new PriceService. lookbackDays is how far back an
// incremental refresh re-fetches to pick up corrected closes.
func NewPriceService(
	priceRepo *repository.PriceRepository,
	orderRepo *repository.OrderRepository,
	yahooClient yahoo.Client,
	lookbackDays int,
) *PriceService {
	return &PriceService{
		priceRepo:    priceRepo,
		orderRepo:    orderRepo,
		yahooClient:  yahooClient,
		lookbackDays: lookbackDays,
	}
}

// RefreshResult reports one instrument's refresh.
type RefreshResult struct {
	Instrument string `json:"instrument"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Stored     int    `json:"stored"`
	Error      string `json:"error,omitempty"`
}

// RefreshSummary reports a RefreshAll run.
type RefreshSummary struct {
	Results []RefreshResult `json:"results"`
	Failed  int             `json:"failed"`
}

// Refresh fetches daily closes for symbol in [start, end] and stores them.
//
// Returns:
//   - int: Number of closes stored
//   - error: ErrInvalidDateRange, ErrSymbolNotFound, or a wrapped
//     ErrFailedToRefreshPrices for transport and storage failures
func (s *PriceService) Refresh(ctx context.Context, symbol string, start, end time.Time) (int, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end %s is before start %s", apperrors.ErrInvalidDateRange, model.DateKey(end), model.DateKey(start))
	}

	resp, err := s.yahooClient.QuerySymbolByDateRange(ctx, symbol, start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrSymbolNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshPrices, err)
	}
	chart, err := s.yahooClient.ParseChart(resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToRefreshPrices, symbol, err)
	}

	prices := make([]model.InstrumentPrice, 0, len(chart.Indicators))
	for _, p := range chart.PricePoints() {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		prices = append(prices, model.InstrumentPrice{
			Instrument: symbol,
			Date:       p.Date,
			Close:      p.Close,
			Source:     PriceSourceYahoo,
		})
	}

	n, err := s.priceRepo.UpsertPrices(ctx, prices)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshPrices, err)
	}
	log.Info().Str("instrument", symbol).Str("start", model.DateKey(start)).Str("end", model.DateKey(end)).Int("stored", n).Msg("refreshed prices")
	return n, nil
}

// RefreshAll refreshes every instrument referenced by a stored order plus
// DefaultBenchmarkInstrument, up to today.
//
// An instrument with stored prices is re-fetched from lookbackDays before its
// latest stored date; one without is fetched from its first order date. A
// failing instrument is recorded in the summary and does not stop the run.
func (s *PriceService) RefreshAll(ctx context.Context, today time.Time) (RefreshSummary, error) {
	today = model.Day(today)

	instruments, err := s.orderRepo.GetInstrumentFirstDates(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshPrices, err)
	}
	instruments = withBenchmark(instruments, today.AddDate(0, 0, -s.lookbackDays))

	summary := RefreshSummary{Results: make([]RefreshResult, 0, len(instruments))}
	for _, inst := range instruments {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		start, err := s.refreshStart(ctx, inst)
		if err != nil {
			return summary, err
		}
		res := RefreshResult{
			Instrument: inst.Instrument,
			StartDate:  model.DateKey(start),
			EndDate:    model.DateKey(today),
		}
		if start.After(today) {
			summary.Results = append(summary.Results, res)
			continue
		}

		n, err := s.Refresh(ctx, inst.Instrument, start, today)
		if err != nil {
			log.Warn().Err(err).Str("instrument", inst.Instrument).Msg("price refresh failed")
			res.Error = err.Error()
			summary.Failed++
		}
		res.Stored = n
		summary.Results = append(summary.Results, res)
	}
	return summary, nil
}

func (s *PriceService) refreshStart(ctx context.Context, inst model.InstrumentSince) (time.Time, error) {
	latest, ok, err := s.priceRepo.GetLatestPriceDate(ctx, inst.Instrument)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshPrices, err)
	}
	if !ok {
		return inst.FirstDate, nil
	}
	start := latest.AddDate(0, 0, -s.lookbackDays)
	if start.Before(inst.FirstDate) {
		start = inst.FirstDate
	}
	return start, nil
}

// withBenchmark adds the benchmark instrument if no order references it. It
// starts at the earliest order date, or at fallback when there are no orders.
func withBenchmark(instruments []model.InstrumentSince, fallback time.Time) []model.InstrumentSince {
	first := fallback
	for i, inst := range instruments {
		if inst.Instrument == DefaultBenchmarkInstrument {
			return instruments
		}
		if i == 0 || inst.FirstDate.Before(first) {
			first = inst.FirstDate
		}
	}
	return append(instruments, model.InstrumentSince{Instrument: DefaultBenchmarkInstrument, FirstDate: first})
}

// GetPrices returns stored closes for symbol in [start, end]. Zero dates
// leave that side unbounded. Returns apperrors.ErrPriceNotFound when nothing matches.
func (s *PriceService) GetPrices(ctx context.Context, symbol string, start, end time.Time) ([]model.InstrumentPrice, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", apperrors.ErrInvalidDateRange, model.DateKey(end), model.DateKey(start))
	}
	prices, err := s.priceRepo.GetPrices(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePrices, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPriceNotFound, symbol)
	}
	return prices, nil
}
