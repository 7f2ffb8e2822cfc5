package alphavantage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ListingEntry is one row of the LISTING_STATUS report. The ipo and delisting dates are not used for ETF
// discovery and are not read.
type ListingEntry struct {
	Symbol    string
	Name      string
	Exchange  string
	AssetType string
	Status    string
}

var listingColumns = []string{"symbol", "name", "exchange", "assetType", "status"}

// GetListingStatus fetches the LISTING_STATUS report. state is "active" or "delisted".
func (c *Client) GetListingStatus(ctx context.Context, state string) ([]ListingEntry, error) {
	if state != "active" && state != "delisted" {
		return nil, fmt.Errorf("unknown listing state %q", state)
	}
	body, err := c.call(ctx, "LISTING_STATUS", url.Values{"state": {state}})
	if err != nil {
		return nil, err
	}
	if note, ok := noteIn(body); ok {
		return nil, fmt.Errorf("%w for listing status: %s", ErrAPILimit, note)
	}

	entries, err := parseListing(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing status: %w", err)
	}
	log.Debugf("LISTING_STATUS %s: %d rows", state, len(entries))
	return entries, nil
}

// ActiveETFs keeps the active rows whose asset type is ETF. A symbol listed on several exchanges
// keeps its first row.
func ActiveETFs(entries []ListingEntry) []ListingEntry {
	seen := make(map[string]struct{}, len(entries))
	var out []ListingEntry
	for _, e := range entries {
		if e.Symbol == "" || !strings.EqualFold(e.AssetType, "ETF") || !strings.EqualFold(e.Status, "Active") {
			continue
		}
		if _, dup := seen[e.Symbol]; dup {
			continue
		}
		seen[e.Symbol] = struct{}{}
		out = append(out, e)
	}
	return out
}

// parseListing reads the report by header name so that column order does not matter.
// Short rows are skipped rather than failing the whole report.
func parseListing(r io.Reader) ([]ListingEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	last := 0
	for _, col := range listingColumns {
		i, ok := idx[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		last = max(last, i)
	}

	var entries []ListingEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(record) <= last {
			continue
		}
		entries = append(entries, ListingEntry{
			Symbol:    strings.TrimSpace(record[idx["symbol"]]),
			Name:      strings.TrimSpace(record[idx["name"]]),
			Exchange:  record[idx["exchange"]],
			AssetType: record[idx["assetType"]],
			Status:    record[idx["status"]],
		})
	}
	return entries, nil
}
