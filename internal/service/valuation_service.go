package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
)

// DefaultBenchmarkInstrument is used when a benchmark request carries no allocation.
const DefaultBenchmarkInstrument = "SPY"

// ValuationService values stored portfolios and projects benchmarks against
// a price source. Every call runs under a wall-clock budget.
type ValuationService struct {
	loader      *LedgerLoader
	prices      valuation.PriceSource
	timeout     time.Duration
	concurrency int
	now         func() time.Time
}

// ValuationOption configures a ValuationService.
type ValuationOption func(*ValuationService)

// WithTimeout sets the per-call budget. Zero disables it.
func WithTimeout(d time.Duration) ValuationOption {
	return func(s *ValuationService) { s.timeout = d }
}

// WithLoadConcurrency bounds parallel price loads per call.
func WithLoadConcurrency(n int) ValuationOption {
	return func(s *ValuationService) { s.concurrency = n }
}

// WithClock overrides how "today" is determined.
func WithClock(now func() time.Time) ValuationOption {
	return func(s *ValuationService) { s.now = now }
}

// NewValuationService creates a new ValuationService.
func NewValuationService(loader *LedgerLoader, prices valuation.PriceSource, opts ...ValuationOption) *ValuationService {
	s := &ValuationService{
		loader:      loader,
		prices:      prices,
		concurrency: valuation.DefaultLoadConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BenchmarkRequest describes a dollar-cost-averaging projection.
// Zero dates are defaulted by the caller-facing operation.
type BenchmarkRequest struct {
	StartDate           time.Time
	EndDate             time.Time
	MonthlyContribution float64
	Allocation          map[string]float64
}

func (s *ValuationService) today() time.Time {
	return model.Day(s.now().UTC())
}

func (s *ValuationService) withBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// budgetErr reports a blown budget as ErrValuationTimeout. A cancellation by
// the caller is returned unchanged.
func budgetErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperrors.ErrValuationTimeout, err)
	}
	return err
}

// ValuePortfolio replays a stored portfolio's ledger up to end.
//
// Parameters:
//   - ctx: Request context
//   - portfolioID: Portfolio to value
//   - end: Valuation cutoff; zero means today
//
// Returns:
//   - model.PortfolioValuation: The daily total series. Allocation is omitted
//     when the total on the last date is zero.
//   - error: apperrors.ErrPortfolioNotFound, ErrEmptyLedger, ErrInvalidDateRange,
//     ErrDataUnavailable, ErrUnknownInstrument or ErrValuationTimeout
func (s *ValuationService) ValuePortfolio(ctx context.Context, portfolioID string, end time.Time) (model.PortfolioValuation, error) {
	if end.IsZero() {
		end = s.today()
	}

	ctx, cancel := s.withBudget(ctx)
	defer cancel()

	pl, err := s.loader.Load(ctx, portfolioID)
	if err != nil {
		return model.PortfolioValuation{}, budgetErr(ctx, err)
	}

	v, err := s.replay(ctx, pl.Ledger, s.newBook(), end)
	if err != nil {
		return model.PortfolioValuation{}, err
	}

	result := model.PortfolioValuation{
		PortfolioID:   portfolioID,
		InceptionDate: model.DateKey(v.InceptionDate()),
		ValuationEnd:  model.DateKey(v.LastDate()),
		Series:        v.Total(),
	}

	allocation, err := v.Allocation()
	switch {
	case errors.Is(err, apperrors.ErrDivisionByZero):
		log.Warn().Str("portfolio_id", portfolioID).Str("date", result.ValuationEnd).Msg("portfolio total is zero, allocation omitted")
	case err != nil:
		return model.PortfolioValuation{}, err
	default:
		result.Allocation = allocation
	}
	return result, nil
}

func (s *ValuationService) replay(ctx context.Context, ledger valuation.Ledger, book *valuation.PriceBook, end time.Time) (*valuation.Valuation, error) {
	started := time.Now()
	v, err := valuation.Replay(ctx, ledger, book, end)
	if err != nil {
		return nil, budgetErr(ctx, err)
	}
	log.Debug().
		Int("orders", len(ledger.Orders)).
		Int("instruments", len(v.Instruments())).
		Int("days", len(v.Calendar())).
		Dur("elapsed", time.Since(started)).
		Msg("replayed ledger")
	return v, nil
}

// Benchmark projects a dollar-cost-averaging benchmark over the lifetime of a
// stored portfolio and returns it next to the portfolio's own value series.
//
// A zero StartDate defaults to the portfolio's inception date, a zero EndDate
// to today, and an empty Allocation to 100% DefaultBenchmarkInstrument.
func (s *ValuationService) Benchmark(ctx context.Context, portfolioID string, req BenchmarkRequest) (model.BenchmarkComparison, error) {
	if req.EndDate.IsZero() {
		req.EndDate = s.today()
	}

	ctx, cancel := s.withBudget(ctx)
	defer cancel()

	pl, err := s.loader.Load(ctx, portfolioID)
	if err != nil {
		return model.BenchmarkComparison{}, budgetErr(ctx, err)
	}
	if req.StartDate.IsZero() {
		req.StartDate = pl.Ledger.InceptionDate
	}

	// one book for both passes: a benchmark instrument the portfolio also
	// holds is read once
	book := s.newBook()
	v, err := s.replay(ctx, pl.Ledger, book, req.EndDate)
	if err != nil {
		return model.BenchmarkComparison{}, err
	}

	cmp, err := s.project(ctx, req, book)
	if err != nil {
		return model.BenchmarkComparison{}, err
	}
	cmp.PortfolioID = portfolioID
	cmp.Portfolio = v.Total()
	return cmp, nil
}

// ProjectBenchmark projects a standalone dollar-cost-averaging benchmark.
// StartDate is required; a zero EndDate defaults to today and an empty
// Allocation to 100% DefaultBenchmarkInstrument.
func (s *ValuationService) ProjectBenchmark(ctx context.Context, req BenchmarkRequest) (model.BenchmarkComparison, error) {
	if req.StartDate.IsZero() {
		return model.BenchmarkComparison{}, fmt.Errorf("%w: start_date", apperrors.ErrMissingRequiredField)
	}
	if req.EndDate.IsZero() {
		req.EndDate = s.today()
	}

	ctx, cancel := s.withBudget(ctx)
	defer cancel()
	return s.project(ctx, req, s.newBook())
}

func (s *ValuationService) newBook() *valuation.PriceBook {
	return valuation.NewPriceBook(s.prices, s.concurrency)
}

func (s *ValuationService) project(ctx context.Context, req BenchmarkRequest, book *valuation.PriceBook) (model.BenchmarkComparison, error) {
	raw := req.Allocation
	if len(raw) == 0 {
		raw = map[string]float64{DefaultBenchmarkInstrument: 100}
	}
	allocation, err := valuation.NormalizeAllocation(raw)
	if err != nil {
		return model.BenchmarkComparison{}, err
	}

	start, end := model.Day(req.StartDate), model.Day(req.EndDate)
	series, err := valuation.ProjectBenchmarkFrom(ctx, start, end, req.MonthlyContribution, allocation, book)
	if err != nil {
		return model.BenchmarkComparison{}, budgetErr(ctx, err)
	}

	return model.BenchmarkComparison{
		StartDate:           model.DateKey(start),
		EndDate:             model.DateKey(end),
		MonthlyContribution: req.MonthlyContribution,
		Allocation:          allocation,
		Benchmark:           valuation.DropEmpty(series),
	}, nil
}
