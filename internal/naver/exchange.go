package naver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawRate is one row of the daily USD/KRW quote table, newest first.
// Date looks like 2025.01.03 and Rate like 1,470.50.
type RawRate struct {
	Date string
	Rate string
}

// GetUSDKRWPage fetches one page of the daily USD/KRW table. Page 1 is the most recent.
// An empty result means the page is past the end of the history.
func (c *Client) GetUSDKRWPage(ctx context.Context, page int) ([]RawRate, error) {
	reqURL := fmt.Sprintf("%s/marketindex/exchangeDailyQuote.naver?marketindexCd=FX_USDKRW&page=%d", c.financeURL, page)
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usd/krw page %d: %w", page, err)
	}
	return parseExchangeTable(body)
}

func parseExchangeTable(body []byte) ([]RawRate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse exchange page: %w", err)
	}

	var rates []RawRate
	doc.Find("table.tbl_exchange tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		rates = append(rates, RawRate{
			Date: strings.TrimSpace(cells.Eq(0).Text()),
			Rate: strings.TrimSpace(cells.Eq(1).Text()),
		})
	})
	return rates, nil
}
