package valuation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// DefaultLoadConcurrency bounds parallel price loads when no option is given.
const DefaultLoadConcurrency = 4

// PriceSource returns the full daily closing-price history of one instrument.
// Implementations return an error wrapping apperrors.ErrDataUnavailable when the
// instrument has no backing series; any other error is treated the same way.
type PriceSource interface {
	LoadPrices(ctx context.Context, instrument string) ([]model.PricePoint, error)
}

// PriceSourceFunc adapts a function to PriceSource.
type PriceSourceFunc func(ctx context.Context, instrument string) ([]model.PricePoint, error)

// LoadPrices calls f.
func (f PriceSourceFunc) LoadPrices(ctx context.Context, instrument string) ([]model.PricePoint, error) {
	return f(ctx, instrument)
}

// Series is one instrument's trading-day price history, sorted by date.
// Dates are calendar days at midnight UTC.
type Series struct {
	instrument string
	points     []model.PricePoint
	index      map[string]int
}

// NewSeries sorts points by date and indexes them. Non-positive or non-finite
// closes are dropped, and a repeated date keeps its last close.
func NewSeries(instrument string, points []model.PricePoint) *Series {
	clean := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		clean = append(clean, model.PricePoint{Date: model.Day(p.Date), Close: p.Close})
	}
	slices.SortStableFunc(clean, func(a, b model.PricePoint) int {
		return a.Date.Compare(b.Date)
	})

	s := &Series{
		instrument: instrument,
		points:     make([]model.PricePoint, 0, len(clean)),
		index:      make(map[string]int, len(clean)),
	}
	for _, p := range clean {
		key := model.DateKey(p.Date)
		if i, ok := s.index[key]; ok {
			s.points[i] = p
			continue
		}
		s.index[key] = len(s.points)
		s.points = append(s.points, p)
	}
	return s
}

// Instrument returns the series identifier.
func (s *Series) Instrument() string { return s.instrument }

// Len returns the number of trading days.
func (s *Series) Len() int { return len(s.points) }

// PriceOn returns the close on date. The boolean is false when date is not a
// trading day for this instrument; callers skip the date and never interpolate.
func (s *Series) PriceOn(date time.Time) (float64, bool) {
	i, ok := s.index[model.DateKey(date)]
	if !ok {
		return 0, false
	}
	return s.points[i].Close, true
}

// Range returns the trading days in [from, to], inclusive.
func (s *Series) Range(from, to time.Time) []model.PricePoint {
	from, to = model.Day(from), model.Day(to)
	if from.After(to) {
		return nil
	}
	lo := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(from) })
	hi := sort.Search(len(s.points), func(i int) bool { return s.points[i].Date.After(to) })
	if lo >= hi {
		return nil
	}
	return slices.Clone(s.points[lo:hi])
}

// PriceBook loads each instrument's series at most once for the lifetime of a
// single valuation or projection call.
type PriceBook struct {
	source PriceSource
	limit  int

	mu     sync.Mutex
	series map[string]*Series
}

// NewPriceBook creates a PriceBook reading from source with at most limit
// concurrent loads during Prefetch. A limit below 1 uses DefaultLoadConcurrency.
func NewPriceBook(source PriceSource, limit int) *PriceBook {
	if limit < 1 {
		limit = DefaultLoadConcurrency
	}
	return &PriceBook{
		source: source,
		limit:  limit,
		series: make(map[string]*Series),
	}
}

// Load returns the cached series for instrument, reading it from the source on
// first use.
func (b *PriceBook) Load(ctx context.Context, instrument string) (*Series, error) {
	b.mu.Lock()
	s, ok := b.series[instrument]
	b.mu.Unlock()
	if ok {
		return s, nil
	}

	s, err := b.fetch(ctx, instrument)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.series[instrument]; ok {
		return cached, nil
	}
	b.series[instrument] = s
	return s, nil
}

// Prefetch loads the distinct instruments in parallel. Loads are independent
// and read-only, so no ordering is guaranteed between them. The first failure
// cancels the remaining loads.
func (b *PriceBook) Prefetch(ctx context.Context, instruments []string) error {
	distinct := make([]string, 0, len(instruments))
	seen := make(map[string]bool, len(instruments))
	for _, instrument := range instruments {
		if seen[instrument] {
			continue
		}
		seen[instrument] = true
		distinct = append(distinct, instrument)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for _, instrument := range distinct {
		g.Go(func() error {
			_, err := b.Load(gctx, instrument)
			return err
		})
	}
	return g.Wait()
}

func (b *PriceBook) fetch(ctx context.Context, instrument string) (*Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points, err := b.source.LoadPrices(ctx, instrument)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if errors.Is(err, apperrors.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrDataUnavailable, instrument, err)
	}
	s := NewSeries(instrument, points)
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: no prices for %s", apperrors.ErrDataUnavailable, instrument)
	}
	return s, nil
}

// MapPriceSource is an in-memory PriceSource keyed by instrument.
type MapPriceSource map[string][]model.PricePoint

// LoadPrices returns the stored points or ErrDataUnavailable.
func (m MapPriceSource) LoadPrices(_ context.Context, instrument string) ([]model.PricePoint, error) {
	points, ok := m[instrument]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDataUnavailable, instrument)
	}
	return points, nil
}
