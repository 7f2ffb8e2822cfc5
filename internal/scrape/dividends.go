// Package scrape reads dividend history tables from HTML pages whose layout is described by configuration.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/config"
	"github.com/epeers/fintrack/internal/util"
)

// ErrNoPageURL is returned when no dividend page is configured for a market
var ErrNoPageURL = errors.New("dividend page_url is not configured")

// RawDividend is one table row as text. PaymentDate and Taxable are empty when the layout has no such column.
type RawDividend struct {
	RecordDate  string
	PaymentDate string
	Amount      string
	Taxable     string
}

// DividendPage fetches dividend tables for one configured page layout
type DividendPage struct {
	cfg        config.DividendPageConfig
	httpClient *http.Client
}

// NewDividendPage creates a scraper for the layout in cfg.
// cfg.PageURL must contain the {ticker} placeholder.
func NewDividendPage(cfg config.DividendPageConfig) *DividendPage {
	return &DividendPage{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// URL returns the page address for ticker
func (p *DividendPage) URL(ticker string) string {
	return strings.ReplaceAll(p.cfg.PageURL, "{ticker}", ticker)
}

// Fetch downloads and parses the dividend table for ticker
func (p *DividendPage) Fetch(ctx context.Context, ticker string) ([]RawDividend, error) {
	if p.cfg.PageURL == "" {
		return nil, ErrNoPageURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(ticker), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; fintrack-importer)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dividend page for %s returned status %d", ticker, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(util.DecodeKorean(resp.Body, resp.Header.Get("Content-Type")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dividend page for %s: %w", ticker, err)
	}
	rows := p.parse(doc)
	log.Debugf("dividend page for %s: %d rows", ticker, len(rows))
	return rows, nil
}

// parse walks every table body row. Rows too short for the record date or amount
// columns are layout noise (headers, spacers) and are skipped.
func (p *DividendPage) parse(doc *goquery.Document) []RawDividend {
	need := max(p.cfg.RecordDateCol, p.cfg.AmountCol)

	var out []RawDividend
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() <= need {
			return
		}
		out = append(out, RawDividend{
			RecordDate:  cellText(cells, p.cfg.RecordDateCol),
			PaymentDate: cellText(cells, p.cfg.PaymentDateCol),
			Amount:      cellText(cells, p.cfg.AmountCol),
			Taxable:     cellText(cells, p.cfg.TaxableCol),
		})
	})
	return out
}

// cellText returns the trimmed text of cell i, or "" when i is negative or out of range
func cellText(cells *goquery.Selection, i int) string {
	if i < 0 || i >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(i).Text())
}
