package valuation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// ProjectBenchmark simulates investing monthly in allocation from start to end
// and returns one value per calendar day, inclusive.
//
// On start and on the first day of every later month the contribution is split
// by percentage and converted to shares at that day's close. An instrument that
// does not trade on a contribution day skips that month's purchase; nothing is
// carried forward. On days an instrument does not trade it contributes 0 to the
// daily value. Zero rows are kept; see DropEmpty.
func ProjectBenchmark(ctx context.Context, start, end time.Time, monthly float64, allocation model.Allocation, prices PriceSource, opts Options) (model.ValueSeries, error) {
	return ProjectBenchmarkFrom(ctx, start, end, monthly, allocation, NewPriceBook(prices, opts.LoadConcurrency))
}

// ProjectBenchmarkFrom is ProjectBenchmark reading through an existing book, so
// series already loaded by a Replay on the same book are not read again.
func ProjectBenchmarkFrom(ctx context.Context, start, end time.Time, monthly float64, allocation model.Allocation, book *PriceBook) (model.ValueSeries, error) {
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s",
			apperrors.ErrInvalidDateRange, model.DateKey(start), model.DateKey(end))
	}
	if len(allocation) == 0 {
		return nil, apperrors.ErrEmptyAllocation
	}

	instruments := allocation.Instruments()
	if err := book.Prefetch(ctx, instruments); err != nil {
		return nil, err
	}
	series := make([]*Series, len(instruments))
	for i, instrument := range instruments {
		s, err := book.Load(ctx, instrument)
		if err != nil {
			return nil, err
		}
		series[i] = s
	}

	shares := make([]float64, len(instruments))
	var out model.ValueSeries
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if day.Equal(start) || day.Day() == 1 {
			for i, instrument := range instruments {
				price, ok := series[i].PriceOn(day)
				if !ok {
					continue
				}
				split := monthly * allocation[instrument] / 100
				shares[i] += split / price
			}
		}

		var value float64
		for i := range instruments {
			if price, ok := series[i].PriceOn(day); ok {
				value += float64(shares[i] * price)
			}
		}
		out = append(out, model.ValuePoint{Date: model.DateKey(day), Value: value})
	}
	return out, nil
}

// DropEmpty removes zero and non-finite points from a series.
func DropEmpty(series model.ValueSeries) model.ValueSeries {
	out := make(model.ValueSeries, 0, len(series))
	for _, p := range series {
		if p.Value == 0 || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}
