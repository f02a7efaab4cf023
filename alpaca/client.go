// Package alpaca fetches historical minute bars from the Alpaca Market
// Data API (v2). It implements market.Feed.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maufadel/trading-market-simulator/market"
)

// DataURL is the base URL of Alpaca's market data service.
const DataURL = "https://data.alpaca.markets"

// maxBarsPerPage is the largest page size the bars endpoint accepts.
const maxBarsPerPage = 10000

// Client is an Alpaca Market Data API client.
type Client struct {
	baseURL    string
	keyID      string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a client authenticated with an Alpaca API key pair.
func NewClient(keyID, secretKey string) *Client {
	return &Client{
		baseURL:   DataURL,
		keyID:     keyID,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiBar is a single bar in the API response.
type apiBar struct {
	Time   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// barsResponse is one page of the multi-symbol bars endpoint.
type barsResponse struct {
	Bars          map[string][]apiBar `json:"bars"`
	NextPageToken *string             `json:"next_page_token"`
}

// Fetch retrieves 1-minute bars for the symbols over [start, end], both
// endpoints included, following next_page_token until the range is
// exhausted. Wraps market.ErrDataUnavailable when the API has no bars for
// the request.
func (c *Client) Fetch(ctx context.Context, symbols []string, start, end time.Time) ([]market.Barset, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("alpaca: no symbols requested")
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("timeframe", "1Min")
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	params.Set("limit", fmt.Sprintf("%d", maxBarsPerPage))
	params.Set("adjustment", "raw")

	sets := make(map[int64]market.Barset)

	pageToken := ""
	for {
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}

		page, err := c.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}

		for symbol, bars := range page.Bars {
			for _, b := range bars {
				t, err := time.Parse(time.RFC3339, b.Time)
				if err != nil {
					return nil, fmt.Errorf("alpaca: parse bar time %q: %w", b.Time, err)
				}

				key := t.Unix()
				bs, ok := sets[key]
				if !ok {
					bs = market.Barset{Time: t.In(market.ExchangeTime), Bars: make(map[string]market.Bar)}
				}
				bs.Bars[symbol] = market.Bar{Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}
				sets[key] = bs
			}
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("alpaca: no bars for %v in [%s, %s]: %w",
			symbols, start.Format(time.RFC3339), end.Format(time.RFC3339), market.ErrDataUnavailable)
	}

	out := make([]market.Barset, 0, len(sets))
	for _, bs := range sets {
		out = append(out, bs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	log.WithFields(log.Fields{
		"symbols": symbols,
		"bars":    len(out),
	}).Debug("alpaca bars fetched")

	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, params url.Values) (*barsResponse, error) {
	apiURL := fmt.Sprintf("%s/v2/stocks/bars?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("alpaca: create request: %w", err)
	}

	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpaca: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alpaca: API error (status %d): %s", resp.StatusCode, string(body))
	}

	var page barsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("alpaca: decode response: %w", err)
	}
	return &page, nil
}
