package flatfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// orderColumns are the expected orders CSV headers, matched case-insensitively.
var orderColumns = []string{"date", "type", "ticker", "shares", "price_per_share"}

// ReadOrders parses an orders CSV with a Date,Type,Ticker,Shares,Price_Per_Share
// header. Column order is free. Blank cells are left empty so the normalizer
// reports them as missing fields.
func ReadOrders(r io.Reader) ([]model.RawOrder, error) {
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
	var missing []string
	for _, name := range orderColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("orders file is missing columns: %s", strings.Join(missing, ", "))
	}

	var orders []model.RawOrder
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		cell := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		o := model.RawOrder{
			Date:       cell("date"),
			Side:       cell("type"),
			Instrument: cell("ticker"),
		}
		if o.Quantity, err = parseNullDecimal(cell("shares")); err != nil {
			return nil, fmt.Errorf("line %d: invalid shares: %w", line, err)
		}
		if o.UnitPrice, err = parseNullDecimal(cell("price_per_share")); err != nil {
			return nil, fmt.Errorf("line %d: invalid price_per_share: %w", line, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ReadOrdersFile opens path and parses it with ReadOrders.
func ReadOrdersFile(path string) ([]model.RawOrder, error) {
	f, err := os.Open(path) //#nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()
	return ReadOrders(f)
}

func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
