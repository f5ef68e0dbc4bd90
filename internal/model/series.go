package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ValuePoint is a portfolio dollar value on one date.
type ValuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ValueSeries is a date-ordered sequence of values keyed by "YYYY-MM-DD".
// It encodes to JSON as an object whose keys keep the series order.
type ValueSeries []ValuePoint

// Get returns the value for date key, if present.
func (s ValueSeries) Get(date string) (float64, bool) {
	i, ok := slices.BinarySearchFunc(s, date, func(p ValuePoint, key string) int {
		switch {
		case p.Date < key:
			return -1
		case p.Date > key:
			return 1
		}
		return 0
	})
	if !ok {
		return 0, false
	}
	return s[i].Value, true
}

// Last returns the final point of the series.
func (s ValueSeries) Last() (ValuePoint, bool) {
	if len(s) == 0 {
		return ValuePoint{}, false
	}
	return s[len(s)-1], true
}

// MarshalJSON writes the series as {"2025-01-03": 12447, ...} in date order.
func (s ValueSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for %s: %w", p.Date, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a date-keyed object and sorts it by date.
func (s *ValueSeries) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(ValueSeries, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, ValuePoint{Date: k, Value: m[k]})
	}
	*s = out
	return nil
}

// Allocation maps an instrument to its percentage of the portfolio, in [0,100].
type Allocation map[string]float64

// Instruments returns the allocation's instruments in sorted order.
func (a Allocation) Instruments() []string {
	return slices.Sorted(maps.Keys(a))
}

// Sum returns the total of all percentages.
func (a Allocation) Sum() float64 {
	var total float64
	for _, instrument := range a.Instruments() {
		total += a[instrument]
	}
	return total
}
