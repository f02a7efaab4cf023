// Package polygon fetches historical minute aggregates from polygon.io.
// It implements market.Feed.
package polygon

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/maufadel/trading-market-simulator/market"
)

type Feed struct {
	client *polygon.Client
}

func NewFeed(apiKey string) *Feed {
	return &Feed{client: polygon.New(apiKey)}
}

// NewFeedWithClient uses a custom HTTP client, mostly for tests.
func NewFeedWithClient(apiKey string, hc *http.Client) *Feed {
	return &Feed{client: polygon.NewWithClient(apiKey, hc)}
}

// Fetch retrieves 1-minute aggregates for every symbol over [start, end]
// and groups them into per-minute barsets. Wraps market.ErrDataUnavailable
// when polygon has no aggregates for any of the symbols in the range.
func (f *Feed) Fetch(ctx context.Context, symbols []string, start, end time.Time) ([]market.Barset, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("polygon: no symbols requested")
	}

	sets := make(map[int64]market.Barset)

	for _, symbol := range symbols {
		params := models.ListAggsParams{
			Ticker:     symbol,
			Multiplier: 1,
			Timespan:   models.Minute,
			From:       models.Millis(start),
			To:         models.Millis(end),
		}.WithOrder(models.Asc).WithAdjusted(false).WithLimit(50000)

		iter := f.client.ListAggs(ctx, params)

		n := 0
		for iter.Next() {
			agg := iter.Item()
			t := time.Time(agg.Timestamp).In(market.ExchangeTime)

			key := t.Unix()
			bs, ok := sets[key]
			if !ok {
				bs = market.Barset{Time: t, Bars: make(map[string]market.Bar)}
			}
			bs.Bars[symbol] = market.Bar{
				Open:  agg.Open,
				High:  agg.High,
				Low:   agg.Low,
				Close: agg.Close,
			}
			sets[key] = bs
			n++
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("polygon: list aggs %s: %w", symbol, err)
		}

		log.WithFields(log.Fields{"symbol": symbol, "bars": n}).Debug("polygon aggs fetched")
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("polygon: no aggregates for %v in [%s, %s]: %w",
			symbols, start.Format(time.RFC3339), end.Format(time.RFC3339), market.ErrDataUnavailable)
	}

	out := make([]market.Barset, 0, len(sets))
	for _, bs := range sets {
		out = append(out, bs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	return out, nil
}
