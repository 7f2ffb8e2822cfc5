package importer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"github.com/epeers/fintrack/config"
	"github.com/epeers/fintrack/internal/alphavantage"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/upsert"
	"github.com/epeers/fintrack/internal/util"
)

// IndicatorStore lists indicators and stores their oscillator. *repository.IndicatorRepository satisfies it.
type IndicatorStore interface {
	ListAll(ctx context.Context) ([]models.Indicator, error)
	SetMACD(ctx context.Context, id int64, value decimal.Decimal) error
}

// BarSource returns daily bars for a symbol. *alphavantage.Client satisfies it.
type BarSource interface {
	GetDailyBars(ctx context.Context, symbol string, outputSize string) ([]alphavantage.RawBar, error)
}

// IndicatorSubject is one tracked indicator
type IndicatorSubject struct {
	models.Indicator
}

func (s IndicatorSubject) Name() string { return s.Ticker }

// IndicatorJob recomputes the weekly MACD oscillator of every indicator
type IndicatorJob struct {
	store IndicatorStore
	bars  BarSource
	cfg   config.IndicatorConfig
}

func NewIndicatorJob(store IndicatorStore, bars BarSource, cfg config.IndicatorConfig) *IndicatorJob {
	return &IndicatorJob{store: store, bars: bars, cfg: cfg}
}

func (j *IndicatorJob) Name() string { return "indicators" }

func (j *IndicatorJob) Subjects(ctx context.Context) ([]IndicatorSubject, error) {
	inds, err := j.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	subjects := make([]IndicatorSubject, len(inds))
	for i, ind := range inds {
		subjects[i] = IndicatorSubject{ind}
	}
	return subjects, nil
}

func (j *IndicatorJob) Import(ctx context.Context, s IndicatorSubject) (upsert.Result, error) {
	raws, err := j.bars.GetDailyBars(ctx, s.Ticker, "full")
	if err != nil {
		return upsert.Result{}, fmt.Errorf("failed to fetch bars: %w", err)
	}

	hist, err := MACDHistogram(WeeklyCloses(ctx, raws), j.cfg.FastPeriod, j.cfg.SlowPeriod, j.cfg.SignalPeriod)
	if err != nil {
		return upsert.Result{}, err
	}
	if err := j.store.SetMACD(ctx, s.ID, hist); err != nil {
		return upsert.Result{}, err
	}
	return upsert.Result{Updated: 1}, nil
}

// WeeklyCloses resamples daily bars to the last close of each Monday-based week, oldest first.
func WeeklyCloses(ctx context.Context, raws []alphavantage.RawBar) []float64 {
	type weekly struct {
		last  time.Time
		close float64
	}
	weeks := make(map[time.Time]weekly)
	for _, r := range raws {
		date, err := ParseDate(r.Date)
		if err != nil {
			AddWarning(ctx, models.WarnUnparseableDate, "bar dropped: %v", err)
			continue
		}
		c, err := ParseAmount(r.Close)
		if err != nil {
			AddWarning(ctx, models.WarnUnparseableValue, "bar %s dropped: %v", date, err)
			continue
		}
		key := util.WeekStart(date.Time)
		if w, ok := weeks[key]; ok && w.last.After(date.Time) {
			continue
		}
		weeks[key] = weekly{last: date.Time, close: c.InexactFloat64()}
	}

	keys := make([]time.Time, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a].Before(keys[b]) })

	closes := make([]float64, len(keys))
	for i, k := range keys {
		closes[i] = weeks[k].close
	}
	return closes
}

// MACDHistogram returns the latest MACD histogram (MACD line minus signal line).
func MACDHistogram(closes []float64, fast, slow, signal int) (decimal.Decimal, error) {
	lookback := max(fast, slow) - 1 + signal - 1
	if len(closes) <= lookback {
		return decimal.Zero, fmt.Errorf("need more than %d weekly closes for MACD(%d,%d,%d), have %d",
			lookback, fast, slow, signal, len(closes))
	}

	_, _, hist := talib.Macd(closes, fast, slow, signal)
	last := hist[len(hist)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return decimal.Zero, fmt.Errorf("macd histogram is not a number")
	}
	return decimal.NewFromFloat(last), nil
}
