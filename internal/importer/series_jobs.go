package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/fintrack/internal/alphavantage"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/naver"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/scrape"
	"github.com/epeers/fintrack/internal/upsert"
	"github.com/epeers/fintrack/internal/util"
)

// Dividend sources for USA ETFs
const (
	SourceVendor = "vendor"
	SourceScrape = "scrape"
)

// ChartJob merges daily bars for a set of ETFs
type ChartJob struct {
	name   string
	db     upsert.Beginner
	etfs   ETFSource
	filter ETFFilter
	table  upsert.Table[repository.SeriesKey, models.DailyBar]
	window Window
	fetch  func(ctx context.Context, ticker string, w Window) ([]rawBar, error)
}

// NewDomesticChartJob imports Naver daily bars for the last weeks weeks
func NewDomesticChartJob(db upsert.Beginner, etfs ETFSource, table upsert.Table[repository.SeriesKey, models.DailyBar],
	client *naver.Client, filter ETFFilter, weeks int, now time.Time) *ChartJob {
	end := util.DateIn(now, util.Seoul())
	filter.Market = models.MarketDomestic
	return &ChartJob{
		name:   "domestic-chart",
		db:     db,
		etfs:   etfs,
		filter: filter,
		table:  table,
		window: Window{Start: end.AddDate(0, 0, -7*weeks), End: end},
		fetch: func(ctx context.Context, ticker string, w Window) ([]rawBar, error) {
			bars, err := client.GetDailyChart(ctx, ticker, w.Start, w.End)
			if err != nil {
				return nil, err
			}
			out := make([]rawBar, len(bars))
			for i, b := range bars {
				out[i] = rawBar(b)
			}
			return out, nil
		},
	}
}

// NewUSAChartJob imports AlphaVantage daily bars for the last years years
func NewUSAChartJob(db upsert.Beginner, etfs ETFSource, table upsert.Table[repository.SeriesKey, models.DailyBar],
	client *alphavantage.Client, filter ETFFilter, years int, now time.Time) *ChartJob {
	filter.Market = models.MarketUSA
	return &ChartJob{
		name:   "usa-chart",
		db:     db,
		etfs:   etfs,
		filter: filter,
		table:  table,
		window: Window{Start: now.AddDate(-years, 0, 0), End: now},
		fetch: func(ctx context.Context, ticker string, _ Window) ([]rawBar, error) {
			bars, err := client.GetDailyBars(ctx, ticker, "full")
			if err != nil {
				return nil, err
			}
			out := make([]rawBar, len(bars))
			for i, b := range bars {
				out[i] = rawBar(b)
			}
			return out, nil
		},
	}
}

func (j *ChartJob) Name() string { return j.name }

func (j *ChartJob) Subjects(ctx context.Context) ([]ETFSubject, error) {
	return selectETFs(ctx, j.etfs, j.filter)
}

func (j *ChartJob) Import(ctx context.Context, s ETFSubject) (upsert.Result, error) {
	raws, err := j.fetch(ctx, s.Ticker, j.window)
	if err != nil {
		return upsert.Result{}, fmt.Errorf("failed to fetch bars: %w", err)
	}
	return upsert.Merge(ctx, j.db, j.table, toBars(ctx, s.ID, raws, j.window))
}

// DividendJob merges distribution history for a set of ETFs
type DividendJob struct {
	name   string
	db     upsert.Beginner
	etfs   ETFSource
	filter ETFFilter
	table  upsert.Table[repository.SeriesKey, models.ETFDividend]
	years  []int
	fetch  func(ctx context.Context, ticker string) ([]rawDividend, error)
}

// NewDomesticDividendJob imports the scraped dividend table of each domestic ETF
func NewDomesticDividendJob(db upsert.Beginner, etfs ETFSource, table upsert.Table[repository.SeriesKey, models.ETFDividend],
	page *scrape.DividendPage, filter ETFFilter) *DividendJob {
	filter.Market = models.MarketDomestic
	return &DividendJob{
		name:   "domestic-dividend",
		db:     db,
		etfs:   etfs,
		filter: filter,
		table:  table,
		fetch:  scrapeFetcher(page),
	}
}

// NewUSADividendJob imports USA distributions in years from the vendor API or a scraped page
func NewUSADividendJob(db upsert.Beginner, etfs ETFSource, table upsert.Table[repository.SeriesKey, models.ETFDividend],
	source string, client *alphavantage.Client, page *scrape.DividendPage, filter ETFFilter, years []int) (*DividendJob, error) {
	filter.Market = models.MarketUSA
	job := &DividendJob{
		name:   "usa-dividend",
		db:     db,
		etfs:   etfs,
		filter: filter,
		table:  table,
		years:  years,
	}
	switch source {
	case SourceVendor:
		job.fetch = func(ctx context.Context, ticker string) ([]rawDividend, error) {
			divs, err := client.GetDividends(ctx, ticker)
			if err != nil {
				return nil, err
			}
			out := make([]rawDividend, len(divs))
			for i, d := range divs {
				record := d.RecordDate
				if _, err := ParseDate(record); err != nil {
					// Older vendor rows often carry only the ex-dividend date
					record = d.ExDividendDate
				}
				out[i] = rawDividend{RecordDate: record, PaymentDate: d.PaymentDate, Amount: d.Amount}
			}
			return out, nil
		}
	case SourceScrape:
		job.fetch = scrapeFetcher(page)
	default:
		return nil, fmt.Errorf("unknown dividend source %q", source)
	}
	return job, nil
}

func scrapeFetcher(page *scrape.DividendPage) func(ctx context.Context, ticker string) ([]rawDividend, error) {
	return func(ctx context.Context, ticker string) ([]rawDividend, error) {
		rows, err := page.Fetch(ctx, ticker)
		if err != nil {
			return nil, err
		}
		out := make([]rawDividend, len(rows))
		for i, r := range rows {
			out[i] = rawDividend(r)
		}
		return out, nil
	}
}

func (j *DividendJob) Name() string { return j.name }

func (j *DividendJob) Subjects(ctx context.Context) ([]ETFSubject, error) {
	return selectETFs(ctx, j.etfs, j.filter)
}

func (j *DividendJob) Import(ctx context.Context, s ETFSubject) (upsert.Result, error) {
	raws, err := j.fetch(ctx, s.Ticker)
	if err != nil {
		return upsert.Result{}, fmt.Errorf("failed to fetch dividends: %w", err)
	}
	return upsert.Merge(ctx, j.db, j.table, toDividends(ctx, s.ID, raws, j.years))
}
