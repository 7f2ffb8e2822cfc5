package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/fintrack/config"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/naver"
	"github.com/epeers/fintrack/internal/upsert"
)

// RatePager pages through the daily USD/KRW table, newest first. *naver.Client satisfies it.
type RatePager interface {
	GetUSDKRWPage(ctx context.Context, page int) ([]naver.RawRate, error)
}

// ExchangeJob merges the USD/KRW series back to a cutoff date
type ExchangeJob struct {
	db        upsert.Beginner
	table     upsert.Table[string, models.ExchangeRate]
	pager     RatePager
	cutoff    models.Date
	maxPages  int
	pagePause time.Duration
}

// NewExchangeJob keeps rates dated within cfg.Years×365 days of now
func NewExchangeJob(db upsert.Beginner, table upsert.Table[string, models.ExchangeRate], pager RatePager,
	cfg config.ExchangeRateConfig, now time.Time) *ExchangeJob {
	return &ExchangeJob{
		db:        db,
		table:     table,
		pager:     pager,
		cutoff:    models.DateOf(now.Add(-time.Duration(cfg.Years) * 365 * 24 * time.Hour)),
		maxPages:  cfg.MaxPages,
		pagePause: cfg.PagePause,
	}
}

func (j *ExchangeJob) Name() string { return "usd-krw" }

func (j *ExchangeJob) Subjects(ctx context.Context) ([]Label, error) {
	return []Label{"USD/KRW"}, nil
}

func (j *ExchangeJob) Import(ctx context.Context, _ Label) (upsert.Result, error) {
	rates, err := j.collect(ctx)
	if err != nil {
		return upsert.Result{}, err
	}
	return upsert.Merge(ctx, j.db, j.table, rates)
}

// collect walks pages until one is empty, a row predates the cutoff, or maxPages is reached.
func (j *ExchangeJob) collect(ctx context.Context) ([]models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	for page := 1; page <= j.maxPages; page++ {
		if page > 1 {
			if err := sleep(ctx, j.pagePause); err != nil {
				return nil, err
			}
		}

		rows, err := j.pager.GetUSDKRWPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		if len(rows) == 0 {
			break
		}

		reachedCutoff := false
		for _, r := range rows {
			date, err := ParseDate(r.Date)
			if err != nil {
				AddWarning(ctx, models.WarnUnparseableDate, "page %d: rate dropped: %v", page, err)
				continue
			}
			if date.Before(j.cutoff.Time) {
				reachedCutoff = true
				break
			}
			rate, err := ParseAmount(r.Rate)
			if err != nil {
				AddWarning(ctx, models.WarnUnparseableValue, "page %d: rate for %s dropped: %v", page, date, err)
				continue
			}
			rates = append(rates, models.ExchangeRate{Date: date, ExchangeRate: rate})
		}
		if reachedCutoff {
			break
		}
	}
	return rates, nil
}
