package valuation

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// Options tunes a valuation or projection call.
type Options struct {
	// LoadConcurrency bounds parallel price loads. Values below 1 use
	// DefaultLoadConcurrency.
	LoadConcurrency int
}

// Valuation is an immutable snapshot of a replayed ledger: the reference
// calendar, one dense value column per instrument aligned to it, and the total.
type Valuation struct {
	calendar    []time.Time
	instruments []string
	columns     map[string][]float64
	total       []float64
}

// ComputeValueSeries replays orders up to valuationEnd and returns the total
// value series and the final allocation. It fails with ErrDivisionByZero when
// the total on the last date is zero; use Replay to obtain the series anyway.
func ComputeValueSeries(ctx context.Context, orders []model.Order, prices PriceSource, valuationEnd time.Time, opts Options) (model.ValueSeries, model.Allocation, error) {
	ledger, err := NewLedger(orders)
	if err != nil {
		return nil, nil, err
	}
	v, err := Replay(ctx, ledger, NewPriceBook(prices, opts.LoadConcurrency), valuationEnd)
	if err != nil {
		return nil, nil, err
	}
	allocation, err := v.Allocation()
	if err != nil {
		return nil, nil, err
	}
	return v.Total(), allocation, nil
}

// Replay folds the ledger into per-instrument value columns.
//
// The reference calendar is the trading-day sequence of the first order's
// instrument, clipped to [inception, valuationEnd].
//
// A BUY adds quantity * unit_price * close(t) / close(t0) to its instrument's
// column for every date t that is both a trading day of that instrument and on
// the reference calendar, where t0 is the instrument's first trading day on or
// after the order date. A new column starts zero-filled, so it is 0 before the
// instrument's first BUY.
//
// A SELL subtracts quantity * unit_price from its column on the sell date and
// every later date. Selling an instrument with no column fails the whole replay
// with ErrUnknownInstrument. Columns may go negative.
func Replay(ctx context.Context, ledger Ledger, book *PriceBook, valuationEnd time.Time) (*Valuation, error) {
	if len(ledger.Orders) == 0 {
		return nil, apperrors.ErrEmptyLedger
	}
	end := model.Day(valuationEnd)
	inception := model.Day(ledger.InceptionDate)
	if end.Before(inception) {
		return nil, fmt.Errorf("%w: valuation end %s is before inception %s",
			apperrors.ErrInvalidDateRange, model.DateKey(end), model.DateKey(inception))
	}

	if err := book.Prefetch(ctx, ledger.Instruments()); err != nil {
		return nil, err
	}

	anchor, err := book.Load(ctx, ledger.Orders[0].Instrument)
	if err != nil {
		return nil, err
	}
	days := anchor.Range(inception, end)
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: %s has no trading days between %s and %s",
			apperrors.ErrDataUnavailable, anchor.Instrument(), model.DateKey(inception), model.DateKey(end))
	}

	v := &Valuation{
		calendar: make([]time.Time, len(days)),
		columns:  make(map[string][]float64),
		total:    make([]float64, len(days)),
	}
	offset := make(map[string]int, len(days))
	for i, p := range days {
		v.calendar[i] = p.Date
		offset[model.DateKey(p.Date)] = i
	}

	for _, o := range ledger.Orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch o.Side {
		case model.SideBuy:
			if err := v.applyBuy(ctx, book, offset, o, end); err != nil {
				return nil, err
			}
		case model.SideSell:
			if err := v.applySell(o); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unknown order type %q", apperrors.ErrMalformedOrder, o.Side)
		}
	}

	for i := range v.total {
		var sum float64
		for _, instrument := range v.instruments {
			sum += v.columns[instrument][i]
		}
		v.total[i] = sum
	}
	return v, nil
}

func (v *Valuation) column(instrument string) []float64 {
	col, ok := v.columns[instrument]
	if !ok {
		col = make([]float64, len(v.calendar))
		v.columns[instrument] = col
		v.instruments = append(v.instruments, instrument)
	}
	return col
}

func (v *Valuation) applyBuy(ctx context.Context, book *PriceBook, offset map[string]int, o model.Order, end time.Time) error {
	col := v.column(o.Instrument)
	if o.Date.After(end) {
		return nil
	}

	series, err := book.Load(ctx, o.Instrument)
	if err != nil {
		return err
	}
	window := series.Range(o.Date, end)
	if len(window) == 0 {
		return fmt.Errorf("%w: %s has no trading days between %s and %s",
			apperrors.ErrDataUnavailable, o.Instrument, model.DateKey(o.Date), model.DateKey(end))
	}

	amount := o.Amount()
	base := window[0].Close
	for _, p := range window {
		i, ok := offset[model.DateKey(p.Date)]
		if !ok {
			continue
		}
		contribution := float64(amount * float64(p.Close/base))
		col[i] += contribution
	}
	return nil
}

func (v *Valuation) applySell(o model.Order) error {
	col, ok := v.columns[o.Instrument]
	if !ok {
		return fmt.Errorf("%w: cannot sell %s on %s before any buy",
			apperrors.ErrUnknownInstrument, o.Instrument, model.DateKey(o.Date))
	}
	amount := o.Amount()
	from := sort.Search(len(v.calendar), func(i int) bool { return !v.calendar[i].Before(o.Date) })
	for i := from; i < len(col); i++ {
		col[i] -= amount
	}
	return nil
}

// Calendar returns the reference calendar.
func (v *Valuation) Calendar() []time.Time { return slices.Clone(v.calendar) }

// InceptionDate returns the first reference calendar date.
func (v *Valuation) InceptionDate() time.Time { return v.calendar[0] }

// LastDate returns the final reference calendar date.
func (v *Valuation) LastDate() time.Time { return v.calendar[len(v.calendar)-1] }

// Instruments returns the instruments in order of first appearance.
func (v *Valuation) Instruments() []string { return slices.Clone(v.instruments) }

// Column returns a copy of one instrument's value column.
func (v *Valuation) Column(instrument string) (model.ValueSeries, bool) {
	col, ok := v.columns[instrument]
	if !ok {
		return nil, false
	}
	return v.series(col), true
}

// Total returns the daily sum of all columns.
func (v *Valuation) Total() model.ValueSeries { return v.series(v.total) }

func (v *Valuation) series(values []float64) model.ValueSeries {
	out := make(model.ValueSeries, len(values))
	for i, value := range values {
		out[i] = model.ValuePoint{Date: model.DateKey(v.calendar[i]), Value: value}
	}
	return out
}
