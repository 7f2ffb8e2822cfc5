package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/epeers/fintrack/internal/alphavantage"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/naver"
	"github.com/epeers/fintrack/internal/upsert"
)

// ETFBulkCreator inserts ETFs whose tickers are not stored yet. *repository.ETFRepository satisfies it.
type ETFBulkCreator interface {
	BulkCreate(ctx context.Context, m models.Market, etfs []models.ETFRequest) (inserted int, skipped int, errs []error)
}

// ListingJob loads an exchange listing into an ETF reference table. Existing tickers are left untouched.
type ListingJob struct {
	name    string
	listing Label
	market  models.Market
	store   ETFBulkCreator
	fetch   func(ctx context.Context) ([]models.ETFRequest, error)
}

// NewDomesticListingJob loads the KRX ETF list from Naver
func NewDomesticListingJob(store ETFBulkCreator, client *naver.Client) *ListingJob {
	return &ListingJob{
		name:    "etf-list",
		listing: "KRX",
		market:  models.MarketDomestic,
		store:   store,
		fetch: func(ctx context.Context) ([]models.ETFRequest, error) {
			items, err := client.GetETFList(ctx)
			if err != nil {
				return nil, err
			}
			reqs := make([]models.ETFRequest, len(items))
			for i, it := range items {
				reqs[i] = models.ETFRequest{Ticker: it.Code, Name: it.Name}
			}
			return reqs, nil
		},
	}
}

// NewUSAListingJob loads active US ETFs from the AlphaVantage listing
func NewUSAListingJob(store ETFBulkCreator, client *alphavantage.Client) *ListingJob {
	return &ListingJob{
		name:    "usa-etf-list",
		listing: "US",
		market:  models.MarketUSA,
		store:   store,
		fetch: func(ctx context.Context) ([]models.ETFRequest, error) {
			entries, err := client.GetListingStatus(ctx, "active")
			if err != nil {
				return nil, err
			}
			active := alphavantage.ActiveETFs(entries)
			reqs := make([]models.ETFRequest, len(active))
			for i, e := range active {
				reqs[i] = models.ETFRequest{Ticker: e.Symbol, Name: e.Name}
			}
			return reqs, nil
		},
	}
}

func (j *ListingJob) Name() string { return j.name }

func (j *ListingJob) Subjects(ctx context.Context) ([]Label, error) {
	return []Label{j.listing}, nil
}

func (j *ListingJob) Import(ctx context.Context, _ Label) (upsert.Result, error) {
	reqs, err := j.fetch(ctx)
	if err != nil {
		return upsert.Result{}, fmt.Errorf("failed to fetch listing: %w", err)
	}

	seen := make(map[string]bool, len(reqs))
	unique := make([]models.ETFRequest, 0, len(reqs))
	var res upsert.Result
	for _, r := range reqs {
		r.Ticker = strings.TrimSpace(r.Ticker)
		r.Name = strings.TrimSpace(r.Name)
		if r.Ticker == "" || r.Name == "" {
			res.Skipped++
			continue
		}
		if seen[r.Ticker] {
			AddWarning(ctx, models.WarnDuplicateTicker, "listing repeats ticker %s; first entry kept", r.Ticker)
			res.Skipped++
			continue
		}
		seen[r.Ticker] = true
		unique = append(unique, r)
	}

	inserted, skipped, errs := j.store.BulkCreate(ctx, j.market, unique)
	res.Created = inserted
	res.Skipped += skipped
	if len(errs) > 0 {
		return res, fmt.Errorf("%d of %d listing rows failed: %w", len(errs), len(unique), errors.Join(errs...))
	}
	return res, nil
}
