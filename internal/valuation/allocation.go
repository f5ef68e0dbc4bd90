package valuation

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Allocation derives each instrument's share of the total on the last
// calendar date, in percent. It fails with ErrDivisionByZero when that total is 0.
func (v *Valuation) Allocation() (model.Allocation, error) {
	last := len(v.calendar) - 1
	total := v.total[last]
	if total == 0 {
		return nil, fmt.Errorf("%w on %s", apperrors.ErrDivisionByZero, model.DateKey(v.calendar[last]))
	}
	out := make(model.Allocation, len(v.instruments))
	for _, instrument := range v.instruments {
		out[instrument] = v.columns[instrument][last] / total * 100
	}
	return out, nil
}

// NormalizeAllocation validates an externally supplied allocation and forces
// it to sum to exactly 100 by adding the drift to the largest entry. Ties for
// the largest entry go to the alphabetically first instrument.
func NormalizeAllocation(in map[string]float64) (model.Allocation, error) {
	if len(in) == 0 {
		return nil, apperrors.ErrEmptyAllocation
	}

	out := make(model.Allocation, len(in))
	for instrument, pct := range in {
		key := strings.TrimSpace(instrument)
		if key == "" {
			return nil, fmt.Errorf("%w: empty instrument", apperrors.ErrInvalidAllocation)
		}
		if math.IsNaN(pct) || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%w: %s has percentage %v", apperrors.ErrInvalidAllocation, key, pct)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: duplicate instrument %s", apperrors.ErrInvalidAllocation, key)
		}
		out[key] = pct
	}

	sum := decimal.Zero
	largest := ""
	for _, instrument := range out.Instruments() {
		sum = sum.Add(decimal.NewFromFloat(out[instrument]))
		if largest == "" || out[instrument] > out[largest] {
			largest = instrument
		}
	}

	drift := hundred.Sub(sum)
	if drift.IsZero() {
		return out, nil
	}
	adjusted := decimal.NewFromFloat(out[largest]).Add(drift)
	if adjusted.IsNegative() {
		return nil, fmt.Errorf("%w: percentages sum to %s", apperrors.ErrInvalidAllocation, sum.String())
	}
	out[largest], _ = adjusted.Float64()
	return out, nil
}
