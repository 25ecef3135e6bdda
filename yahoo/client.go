// Package yahoo fetches daily closing prices from the Yahoo Finance
// chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client is a Yahoo Finance API client.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

var _ trackfolio.QuoteFetcher = (*Client)(nil)

// NewClient creates a new Yahoo Finance client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// WithBaseURL points the client at another endpoint. For tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// chartResponse is the shape of the v8 chart API answer.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// ClosingPrices fetches the closes of tickers for one day. Tickers
// with no quote are left out of the result, a partial or empty map is
// not an error.
func (c *Client) ClosingPrices(ctx context.Context, tickers []string, day date.Date) (trackfolio.PriceMap, error) {
	out := make(trackfolio.PriceMap)
	for _, ticker := range tickers {
		price, currency, err := c.closeOn(ctx, ticker, day)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Str("symbol", ticker).Stringer("date", day).Msg("no close available")
			continue
		}
		out[ticker] = trackfolio.M(price, currency)
	}
	return out, nil
}

func (c *Client) closeOn(ctx context.Context, symbol string, day date.Date) (float64, string, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", fmt.Sprintf("%d", day.Unix()))
	params.Add("period2", fmt.Sprintf("%d", day.Add(1).Unix()))

	reqURL := c.baseURL + "/v8/finance/chart/" + url.QueryEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, "", fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read response body: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Chart.Error != nil {
		return 0, "", fmt.Errorf("Yahoo Finance API error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 {
		return 0, "", fmt.Errorf("no chart data for %s", symbol)
	}

	chart := result.Chart.Result[0]
	if len(chart.Indicators.Quote) == 0 {
		return 0, "", fmt.Errorf("no quote data for %s", symbol)
	}
	closes := chart.Indicators.Quote[0].Close
	for i, ts := range chart.Timestamp {
		if i >= len(closes) || closes[i] == 0 {
			continue
		}
		got := time.Unix(ts, 0).UTC()
		if got.Year() == day.Year() && got.Month() == day.Month() && got.Day() == day.Day() {
			return closes[i], chart.Meta.Currency, nil
		}
	}
	return 0, "", fmt.Errorf("no close for %s on %s", symbol, day)
}
