// Package alphavantage reads USA ETF listings, daily bars and distributions from AlphaVantage.
// https://www.alphavantage.co/documentation/
package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// ErrAPILimit is returned when AlphaVantage answers 200 with a throttling or error note instead of data
var ErrAPILimit = errors.New("alphavantage returned no data")

// Client queries one AlphaVantage endpoint with a fixed API key
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client against the public endpoint
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a client against baseURL (for testing); empty means the public endpoint
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetDailyBars returns the daily bars of symbol, oldest first. Fields are passed through as text,
// so a bar with a missing field is still returned and left for the caller to reject.
// outputSize is "compact" (100 days) or "full".
func (c *Client) GetDailyBars(ctx context.Context, symbol string, outputSize string) ([]RawBar, error) {
	body, err := c.call(ctx, "TIME_SERIES_DAILY", url.Values{
		"symbol":     {symbol},
		"outputsize": {outputSize},
	})
	if err != nil {
		return nil, err
	}

	var series TimeSeriesDailyResponse
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("failed to decode daily series for %s: %w", symbol, err)
	}
	if len(series.TimeSeries) == 0 {
		return nil, fmt.Errorf("%w for %s: %s", ErrAPILimit, symbol, series.message())
	}

	bars := make([]RawBar, 0, len(series.TimeSeries))
	for date, v := range series.TimeSeries {
		bars = append(bars, RawBar{Date: date, Open: v.Open, High: v.High, Low: v.Low, Close: v.Close, Volume: v.Volume})
	}
	// ISO dates sort lexically
	slices.SortFunc(bars, func(a, b RawBar) int { return strings.Compare(a.Date, b.Date) })
	return bars, nil
}

// GetDividends returns the distribution history of symbol. An ETF that never paid yields an empty slice.
func (c *Client) GetDividends(ctx context.Context, symbol string) ([]RawDividend, error) {
	body, err := c.call(ctx, "DIVIDENDS", url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, err
	}

	var divs DividendsResponse
	if err := json.Unmarshal(body, &divs); err != nil {
		return nil, fmt.Errorf("failed to decode dividends for %s: %w", symbol, err)
	}
	if divs.Data == nil {
		return nil, fmt.Errorf("%w for %s: %s", ErrAPILimit, symbol, divs.message())
	}

	out := make([]RawDividend, len(divs.Data))
	for i, d := range divs.Data {
		out[i] = RawDividend{
			ExDividendDate: d.ExDividendDate,
			RecordDate:     d.RecordDate,
			PaymentDate:    d.PaymentDate,
			Amount:         d.Amount,
		}
	}
	return out, nil
}

// call issues one query for function with the API key and extra parameters, returning the raw body
func (c *Client) call(ctx context.Context, function string, extra url.Values) ([]byte, error) {
	params := url.Values{}
	for k, v := range extra {
		params[k] = v
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", function, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage %s returned status %d", function, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", function, err)
	}
	log.Debugf("alphavantage %s %s: %d bytes in %d ms", function, extra.Get("symbol"), len(body), time.Since(start).Milliseconds())
	return body, nil
}

// noteIn reports the throttle or error note of a body that should have been CSV.
// AlphaVantage answers CSV endpoints with a JSON object when it refuses the call.
func noteIn(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var notes apiNotes
	if err := json.Unmarshal(trimmed, &notes); err != nil {
		return "", false
	}
	return notes.message(), true
}
