// Package replay serves minute bars from CSV files on disk, for
// deterministic offline sessions and tests.
package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/maufadel/trading-market-simulator/market"
)

// CSVFeed reads one file per symbol, SYMBOL.csv, from a directory. Rows
// are "time,open,high,low,close" with RFC3339 timestamps, one row per
// minute, with an optional header row.
type CSVFeed struct {
	dir string
}

func NewCSVFeed(dir string) *CSVFeed {
	return &CSVFeed{dir: dir}
}

// Fetch loads the bars of every symbol within [start, end], both bounds
// included, grouped into per-minute barsets ordered by time. A symbol with
// no file on disk is a data-unavailable condition, as is a range no file
// has rows for.
func (f *CSVFeed) Fetch(ctx context.Context, symbols []string, start, end time.Time) ([]market.Barset, error) {
	sets := make(map[int64]market.Barset)

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(f.dir, symbol+".csv")
		if err := f.loadSymbol(path, symbol, start, end, sets); err != nil {
			return nil, err
		}
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("replay: no bars for %v in [%s, %s]: %w",
			symbols, start.Format(time.RFC3339), end.Format(time.RFC3339), market.ErrDataUnavailable)
	}

	out := make([]market.Barset, 0, len(sets))
	for _, bs := range sets {
		out = append(out, bs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (f *CSVFeed) loadSymbol(path, symbol string, start, end time.Time, sets map[int64]market.Barset) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("replay: no data file for %s: %w", symbol, market.ErrDataUnavailable)
		}
		return fmt.Errorf("replay: open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 5

	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("replay: read %s: %w", path, err)
		}
		line++

		// Header row
		if line == 1 && row[0] == "time" {
			continue
		}

		bar, t, err := parseBarRow(row)
		if err != nil {
			return fmt.Errorf("replay: %s line %d: %w", path, line, err)
		}

		if t.Before(start) || t.After(end) {
			continue
		}

		key := t.Unix()
		bs, ok := sets[key]
		if !ok {
			bs = market.Barset{Time: t.In(market.ExchangeTime), Bars: make(map[string]market.Bar)}
		}
		bs.Bars[symbol] = bar
		sets[key] = bs
	}
}

func parseBarRow(row []string) (market.Bar, time.Time, error) {
	t, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return market.Bar{}, time.Time{}, fmt.Errorf("parse time %q: %w", row[0], err)
	}

	vals := make([]float64, 4)
	for i, field := range row[1:5] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return market.Bar{}, time.Time{}, fmt.Errorf("parse price %q: %w", field, err)
		}
		vals[i] = v
	}

	return market.Bar{Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}, t, nil
}
