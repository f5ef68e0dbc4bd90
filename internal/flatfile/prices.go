// Package flatfile reads and writes the CSV layouts used for offline valuation:
// one <TICKER>.csv price history per instrument and an orders export.
package flatfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// PriceDir is a directory of <TICKER>.csv price files. Each file has a header
// row with at least Date and Close columns; other columns are ignored.
type PriceDir struct {
	dir string
}

// NewPriceDir returns a price source reading from dir.
func NewPriceDir(dir string) *PriceDir {
	return &PriceDir{dir: dir}
}

// Dir returns the backing directory.
func (p *PriceDir) Dir() string { return p.dir }

func (p *PriceDir) path(instrument string) (string, error) {
	if instrument == "" || strings.ContainsAny(instrument, `/\`) || instrument == "." || instrument == ".." {
		return "", fmt.Errorf("invalid instrument name %q", instrument)
	}
	return filepath.Join(p.dir, instrument+".csv"), nil
}

// LoadPrices reads the instrument's price file. A missing file fails with
// apperrors.ErrDataUnavailable.
func (p *PriceDir) LoadPrices(ctx context.Context, instrument string) ([]model.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := p.path(instrument)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDataUnavailable, err)
	}
	f, err := os.Open(path) //#nosec G304 -- instrument is checked for path separators
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no price file for %s", apperrors.ErrDataUnavailable, instrument)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	points, err := ReadPrices(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return points, nil
}

// SavePrices writes points to the instrument's price file, replacing it.
func (p *PriceDir) SavePrices(instrument string, points []model.PricePoint) error {
	path, err := p.path(instrument)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create price directory: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //#nosec G304 -- instrument is checked for path separators
	if err != nil {
		return fmt.Errorf("failed to create price file: %w", err)
	}
	if err := WritePrices(f, points); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close price file: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadPrices parses a Date,...,Close,... CSV. Dates may carry a time suffix
// ("2025-01-03 00:00:00-05:00"); only the calendar date is kept. Rows with an
// empty or "null" close are skipped.
func ReadPrices(r io.Reader) ([]model.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := columnIndex(header)
	dateCol, ok := cols["date"]
	if !ok {
		return nil, errors.New("missing Date column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, errors.New("missing Close column")
	}

	var points []model.PricePoint
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if dateCol >= len(record) || closeCol >= len(record) {
			return nil, fmt.Errorf("line %d: too few columns", line)
		}

		raw := strings.TrimSpace(record[closeCol])
		if raw == "" || strings.EqualFold(raw, "null") {
			continue
		}
		date, err := parseCSVDate(record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid close %q: %w", line, raw, err)
		}
		closePrice, _ := price.Float64()
		points = append(points, model.PricePoint{Date: date, Close: closePrice})
	}
	return points, nil
}

// WritePrices writes points as a Date,Close CSV.
func WritePrices(w io.Writer, points []model.PricePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Close"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{model.DateKey(p.Date), decimal.NewFromFloat(p.Close).String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateFormat) {
		s = s[:len(model.DateFormat)]
	}
	return model.ParseDate(s)
}
