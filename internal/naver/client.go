// Package naver fetches KRX ETF listings, daily charts and the USD/KRW quote table from Naver Finance.
package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/internal/util"
)

const (
	defaultFinanceURL = "https://finance.naver.com"
	defaultAPIURL     = "https://api.finance.naver.com"
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Client is an HTTP client for Naver Finance
type Client struct {
	financeURL string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a client against the public Naver Finance hosts
func NewClient() *Client {
	return NewClientWithBaseURL(defaultFinanceURL, defaultAPIURL)
}

// NewClientWithBaseURL creates a client with custom hosts (for testing)
func NewClientWithBaseURL(financeURL, apiURL string) *Client {
	if financeURL == "" {
		financeURL = defaultFinanceURL
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		financeURL: financeURL,
		apiURL:     apiURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// get fetches reqURL and returns its body decoded to UTF-8
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	log.Debugf("naver GET %s?%s", req.URL.Path, req.URL.RawQuery)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver returned status %d for %s", resp.StatusCode, req.URL.Path)
	}

	body, err := io.ReadAll(util.DecodeKorean(resp.Body, resp.Header.Get("Content-Type")))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
