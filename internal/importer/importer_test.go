package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fintrack/config"
	"github.com/epeers/fintrack/internal/alphavantage"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/naver"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/upsert"
)

// stubJob fails the subjects listed in failing
type stubJob struct {
	subjects []Label
	failing  map[string]bool
	listErr  error
	calls    []string
}

func (j *stubJob) Name() string { return "stub" }

func (j *stubJob) Subjects(ctx context.Context) ([]Label, error) {
	return j.subjects, j.listErr
}

func (j *stubJob) Import(ctx context.Context, s Label) (upsert.Result, error) {
	j.calls = append(j.calls, s.Name())
	if j.failing[s.Name()] {
		return upsert.Result{}, errors.New("connection refused")
	}
	AddWarning(ctx, models.WarnIncompleteBar, "one bar dropped for %s", s)
	return upsert.Result{Created: 2, Updated: 1, Skipped: 1}, nil
}

func TestRun_IsolatesFailingSubject(t *testing.T) {
	job := &stubJob{
		subjects: []Label{"069500", "279530", "458730"},
		failing:  map[string]bool{"279530": true},
	}

	sum, err := Run[Label](context.Background(), job, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"069500", "279530", "458730"}, job.calls)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 4, sum.Created)
	assert.Equal(t, 2, sum.Updated)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 2, sum.Warnings)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, "279530", sum.Failures[0].Subject)
	assert.Contains(t, sum.Failures[0].Error, "connection refused")
	assert.NotEmpty(t, sum.RunID)
	assert.False(t, sum.AllFailed())
}

func TestRun_SubjectListFailure(t *testing.T) {
	job := &stubJob{listErr: errors.New("db down")}
	_, err := Run[Label](context.Background(), job, Options{})
	assert.Error(t, err)
	assert.Empty(t, job.calls)
}

func TestRun_AllFailed(t *testing.T) {
	job := &stubJob{subjects: []Label{"A", "B"}, failing: map[string]bool{"A": true, "B": true}}
	sum, err := Run[Label](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.True(t, sum.AllFailed())
	assert.Equal(t, 0, sum.Created)
}

func TestRun_PausesBetweenSubjects(t *testing.T) {
	job := &stubJob{subjects: []Label{"A", "B", "C"}}
	start := time.Now()
	_, err := Run[Label](context.Background(), job, Options{Pause: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRun_CancelledBetweenSubjects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := &stubJob{subjects: []Label{"A", "B"}}

	sum, err := Run[Label](ctx, job, Options{Pause: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, []string{"A"}, job.calls)
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2025-01-03":       "2025-01-03",
		"20250103":         "2025-01-03",
		"2025.01.03":       "2025-01-03",
		"2025.01.03.":      "2025-01-03",
		"01/03/2025":       "2025-01-03",
		"1/3/2025":         "2025-01-03",
		"Jan 3, 2025":      "2025-01-03",
		"Jan 3,2025":       "2025-01-03",
		"January 3, 2025":  "2025-01-03",
		"  Dec 11 , 2024 ": "2024-12-11",
	}
	for in, want := range cases {
		d, err := ParseDate(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, d.String(), in)
		}
	}

	for _, bad := range []string{"", "None", "-", "03-01-2025", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"1,470.50": "1470.5",
		"$0.2488":  "0.2488",
		"₩1,250":   "1250",
		"1,250원":   "1250",
		" 35 200 ": "35200",
		"-3.5":     "-3.5",
	}
	for in, want := range cases {
		d, err := ParseAmount(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, d.String(), in)
		}
	}

	for _, bad := range []string{"", "None", "-", "n/a"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestWindowAndYears(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, w.Contains(models.NewDate(2025, 1, 1)))
	assert.True(t, w.Contains(models.NewDate(2025, 1, 31)))
	assert.False(t, w.Contains(models.NewDate(2024, 12, 31)))
	assert.False(t, w.Contains(models.NewDate(2025, 2, 1)))
	assert.True(t, Window{}.Contains(models.NewDate(1999, 1, 1)))

	assert.True(t, InYears(models.NewDate(2024, 6, 1), nil))
	assert.True(t, InYears(models.NewDate(2024, 6, 1), []int{2023, 2024}))
	assert.False(t, InYears(models.NewDate(2022, 6, 1), []int{2023, 2024}))
}

func TestToBars(t *testing.T) {
	ctx, wl := WithWarningLog(context.Background())
	raws := []rawBar{
		{Date: "20250102", Open: "35000", High: "35500", Low: "34800", Close: "35200", Volume: "123456"},
		{Date: "20250103", Open: "35200", High: "35900", Low: "35100", Close: "35800", Volume: ""},
		{Date: "20250106", Open: "abc", High: "1", Low: "1", Close: "1", Volume: "1"},
		{Date: "garbage", Open: "1", High: "1", Low: "1", Close: "1", Volume: "1"},
		{Date: "20231231", Open: "1", High: "1", Low: "1", Close: "1", Volume: "1"},
	}

	bars := toBars(ctx, 7, raws, Window{Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.Len(t, bars, 2)
	assert.Equal(t, int64(7), bars[0].ETFID)
	assert.Equal(t, "2025-01-02", bars[0].Date.String())
	assert.True(t, bars[0].Close.Equal(decimal.NewFromInt(35200)))
	assert.Equal(t, int64(123456), bars[0].Volume)
	assert.True(t, bars[1].Date.IsZero(), "unparseable date is left for the merge to skip")

	codes := map[models.WarningCode]int{}
	for _, w := range wl.Warnings() {
		codes[w.Code]++
	}
	assert.Equal(t, map[models.WarningCode]int{
		models.WarnIncompleteBar:    1,
		models.WarnUnparseableValue: 1,
		models.WarnUnparseableDate:  1,
	}, codes)
}

func TestToDividends(t *testing.T) {
	raws := []rawDividend{
		{RecordDate: "2025.01.31", PaymentDate: "2025.02.04", Amount: "1,250원", Taxable: "1,100"},
		{RecordDate: "Dec 11, 2024", Amount: "$0.26"},
		{RecordDate: "2023.12.28", Amount: "900"},
		{RecordDate: "2025.03.31", Amount: "-"},
	}

	divs := toDividends(context.Background(), 3, raws, []int{2024, 2025})
	require.Len(t, divs, 2)
	assert.Equal(t, "2025-01-31", divs[0].RecordDate.String())
	require.NotNil(t, divs[0].PaymentDate)
	assert.Equal(t, "2025-02-04", divs[0].PaymentDate.String())
	require.NotNil(t, divs[0].TaxableAmount)
	assert.True(t, divs[0].TaxableAmount.Equal(decimal.NewFromInt(1100)))
	assert.Nil(t, divs[1].PaymentDate)
	assert.Nil(t, divs[1].TaxableAmount)
	assert.Equal(t, "0.26", divs[1].DividendAmount.String())
}

// memTable keeps merged records by key and commits straight through
type memTable[R any] struct {
	key  func(R) (string, bool)
	rows map[string]R
	ids  map[string]int64
}

func newMemTable[R any](key func(R) (string, bool)) *memTable[R] {
	return &memTable[R]{key: key, rows: map[string]R{}, ids: map[string]int64{}}
}

func (m *memTable[R]) Name() string             { return "mem" }
func (m *memTable[R]) Key(rec R) (string, bool) { return m.key(rec) }
func (m *memTable[R]) byID(id int64) (string, bool) {
	for k, v := range m.ids {
		if v == id {
			return k, true
		}
	}
	return "", false
}

func (m *memTable[R]) Find(ctx context.Context, tx pgx.Tx, key string) (int64, bool, error) {
	id, ok := m.ids[key]
	return id, ok, nil
}

func (m *memTable[R]) Insert(ctx context.Context, tx pgx.Tx, rec R) error {
	k, _ := m.key(rec)
	m.ids[k] = int64(len(m.ids) + 1)
	m.rows[k] = rec
	return nil
}

func (m *memTable[R]) Update(ctx context.Context, tx pgx.Tx, id int64, rec R) error {
	k, _ := m.byID(id)
	m.rows[k] = rec
	return nil
}

type nopDB struct{}

func (nopDB) Begin(ctx context.Context) (pgx.Tx, error) { return nopTx{}, nil }

type nopTx struct{ pgx.Tx }

func (nopTx) Commit(ctx context.Context) error   { return nil }
func (nopTx) Rollback(ctx context.Context) error { return nil }

// seriesTable adapts memTable to the SeriesKey-keyed bindings used by chart and dividend jobs
type seriesTable[R any] struct {
	*memTable[R]
	seriesKey func(R) (repository.SeriesKey, bool)
}

func (s seriesTable[R]) Key(rec R) (repository.SeriesKey, bool) { return s.seriesKey(rec) }

func (s seriesTable[R]) Find(ctx context.Context, tx pgx.Tx, key repository.SeriesKey) (int64, bool, error) {
	return s.memTable.Find(ctx, tx, fmt.Sprintf("%d/%s", key.ETFID, key.Date))
}

func newBarTable() seriesTable[models.DailyBar] {
	key := func(b models.DailyBar) (repository.SeriesKey, bool) {
		if b.ETFID == 0 || b.Date.IsZero() {
			return repository.SeriesKey{}, false
		}
		return repository.SeriesKey{ETFID: b.ETFID, Date: b.Date.String()}, true
	}
	return seriesTable[models.DailyBar]{
		memTable: newMemTable(func(b models.DailyBar) (string, bool) {
			k, ok := key(b)
			return fmt.Sprintf("%d/%s", k.ETFID, k.Date), ok
		}),
		seriesKey: key,
	}
}

type stubETFs struct {
	etfs []models.ETF
}

func (s stubETFs) ListByType(ctx context.Context, m models.Market, etfType string) ([]models.ETF, error) {
	var out []models.ETF
	for _, e := range s.etfs {
		if etfType == "" || (e.ETFType != nil && *e.ETFType == etfType) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s stubETFs) ListByTickers(ctx context.Context, m models.Market, tickers []string) ([]models.ETF, error) {
	var out []models.ETF
	for _, e := range s.etfs {
		for _, t := range tickers {
			if e.Ticker == t {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func TestChartJob_SkipsRecordMissingDate(t *testing.T) {
	highDividend := "high_dividend"
	etfs := stubETFs{etfs: []models.ETF{
		{ID: 1, Ticker: "458730", ETFType: &highDividend},
		{ID: 2, Ticker: "069500"},
	}}
	table := newBarTable()
	job := &ChartJob{
		name:   "test-chart",
		db:     nopDB{},
		etfs:   etfs,
		filter: ETFFilter{Market: models.MarketDomestic, ETFType: "high_dividend"},
		table:  table,
		fetch: func(ctx context.Context, ticker string, w Window) ([]rawBar, error) {
			return []rawBar{
				{Date: "20250102", Open: "1", High: "2", Low: "1", Close: "2", Volume: "10"},
				{Date: "20250103", Open: "2", High: "3", Low: "2", Close: "3", Volume: "10"},
				{Date: "", Open: "3", High: "4", Low: "3", Close: "4", Volume: "10"},
				{Date: "20250106", Open: "4", High: "5", Low: "4", Close: "5", Volume: "10"},
			}, nil
		},
	}

	sum, err := Run[ETFSubject](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total, "only the high_dividend etf is selected")
	assert.Equal(t, 3, sum.Created+sum.Updated)
	assert.Equal(t, 1, sum.Skipped)

	again, err := Run[ETFSubject](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 3, again.Updated)
	assert.Len(t, table.rows, 3)
}

func TestChartJob_TickerFilterAndFetchFailure(t *testing.T) {
	etfs := stubETFs{etfs: []models.ETF{{ID: 1, Ticker: "SCHD"}, {ID: 2, Ticker: "JEPI"}}}
	job := &ChartJob{
		name:   "test-chart",
		db:     nopDB{},
		etfs:   etfs,
		filter: ETFFilter{Market: models.MarketUSA, Tickers: []string{"SCHD", "JEPI", "NOPE"}},
		table:  newBarTable(),
		fetch: func(ctx context.Context, ticker string, w Window) ([]rawBar, error) {
			if ticker == "JEPI" {
				return nil, alphavantage.ErrAPILimit
			}
			return []rawBar{{Date: "2025-01-02", Open: "1.5", High: "2", Low: "1", Close: "1.75", Volume: "10"}}, nil
		},
	}

	sum, err := Run[ETFSubject](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, sum.Failures[0].Error, "failed to fetch bars")
}

type stubBulk struct {
	got []models.ETFRequest
}

func (s *stubBulk) BulkCreate(ctx context.Context, m models.Market, etfs []models.ETFRequest) (int, int, []error) {
	s.got = etfs
	return len(etfs) - 1, 1, nil
}

func TestListingJob_DedupesTickers(t *testing.T) {
	store := &stubBulk{}
	job := &ListingJob{
		name:    "etf-list",
		listing: "KRX",
		market:  models.MarketDomestic,
		store:   store,
		fetch: func(ctx context.Context) ([]models.ETFRequest, error) {
			return []models.ETFRequest{
				{Ticker: "069500", Name: "KODEX 200"},
				{Ticker: "069500", Name: "KODEX 200 again"},
				{Ticker: " 458730 ", Name: "TIGER 미국배당다우존스"},
				{Ticker: "", Name: "nameless"},
			}, nil
		},
	}

	sum, err := Run[Label](context.Background(), job, Options{})
	require.NoError(t, err)
	require.Len(t, store.got, 2)
	assert.Equal(t, "KODEX 200", store.got[0].Name)
	assert.Equal(t, "458730", store.got[1].Ticker)
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 3, sum.Skipped)
	assert.Equal(t, 1, sum.Warnings)
}

type stubPager struct {
	pages     map[int][]naver.RawRate
	requested []int
}

func (p *stubPager) GetUSDKRWPage(ctx context.Context, page int) ([]naver.RawRate, error) {
	p.requested = append(p.requested, page)
	return p.pages[page], nil
}

func rateTable() *memTable[models.ExchangeRate] {
	return newMemTable(func(r models.ExchangeRate) (string, bool) {
		return r.Date.String(), !r.Date.IsZero()
	})
}

func TestExchangeJob_StopsAtCutoff(t *testing.T) {
	pager := &stubPager{pages: map[int][]naver.RawRate{
		1: {{Date: "2025.01.03", Rate: "1,470.50"}, {Date: "2025.01.02", Rate: "1,468.00"}},
		2: {{Date: "2024.01.05", Rate: "1,310.00"}, {Date: "2024.01.04", Rate: "1,305.00"}},
		3: {{Date: "2024.01.03", Rate: "1,300.00"}},
	}}
	table := rateTable()
	now := time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	job := NewExchangeJob(nopDB{}, table, pager, config.ExchangeRateConfig{Years: 1, MaxPages: 10}, now)

	sum, err := Run[Label](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pager.requested)
	assert.Equal(t, 3, sum.Created)
	assert.Contains(t, table.rows, "2024-01-05")
	assert.NotContains(t, table.rows, "2024-01-04")
	assert.True(t, table.rows["2025-01-03"].ExchangeRate.Equal(decimal.RequireFromString("1470.5")))
}

func TestExchangeJob_StopsAtEmptyPageAndMaxPages(t *testing.T) {
	now := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	pager := &stubPager{pages: map[int][]naver.RawRate{
		1: {{Date: "2025.01.03", Rate: "1,470.50"}},
	}}
	job := NewExchangeJob(nopDB{}, rateTable(), pager, config.ExchangeRateConfig{Years: 5, MaxPages: 10}, now)
	_, err := Run[Label](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pager.requested)

	pager = &stubPager{pages: map[int][]naver.RawRate{
		1: {{Date: "2025.01.03", Rate: "1"}},
		2: {{Date: "2025.01.02", Rate: "1"}},
		3: {{Date: "2025.01.01", Rate: "1"}},
	}}
	job = NewExchangeJob(nopDB{}, rateTable(), pager, config.ExchangeRateConfig{Years: 5, MaxPages: 2}, now)
	_, err = Run[Label](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pager.requested)
}

func TestWeeklyCloses(t *testing.T) {
	raws := []alphavantage.RawBar{
		{Date: "2025-01-10", Close: "12"}, // Friday, week of Jan 6
		{Date: "2025-01-06", Close: "10"},
		{Date: "2025-01-03", Close: "9"}, // Friday, week of Dec 30
		{Date: "2025-01-13", Close: "13"},
		{Date: "2025-01-08", Close: "11"},
		{Date: "bad", Close: "1"},
	}
	assert.Equal(t, []float64{9, 12, 13}, WeeklyCloses(context.Background(), raws))
}

func TestMACDHistogram(t *testing.T) {
	_, err := MACDHistogram(make([]float64, 30), 12, 26, 9)
	assert.Error(t, err)

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	closes = append(closes, 110, 120, 130)

	hist, err := MACDHistogram(closes, 12, 26, 9)
	require.NoError(t, err)
	assert.True(t, hist.IsPositive(), "a late rally pushes MACD above its signal line, got %s", hist)

	flat, err := MACDHistogram(closes[:60], 12, 26, 9)
	require.NoError(t, err)
	assert.True(t, flat.Abs().LessThan(decimal.RequireFromString("0.0001")))
}

type stubIndicators struct {
	inds   []models.Indicator
	stored map[int64]decimal.Decimal
}

func (s *stubIndicators) ListAll(ctx context.Context) ([]models.Indicator, error) { return s.inds, nil }

func (s *stubIndicators) SetMACD(ctx context.Context, id int64, v decimal.Decimal) error {
	s.stored[id] = v
	return nil
}

type stubBars map[string][]alphavantage.RawBar

func (s stubBars) GetDailyBars(ctx context.Context, symbol, outputSize string) ([]alphavantage.RawBar, error) {
	bars, ok := s[symbol]
	if !ok {
		return nil, alphavantage.ErrAPILimit
	}
	return bars, nil
}

func TestIndicatorJob(t *testing.T) {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	var bars []alphavantage.RawBar
	for w := 0; w < 60; w++ {
		bars = append(bars, alphavantage.RawBar{
			Date:  start.AddDate(0, 0, 7*w+4).Format("2006-01-02"),
			Close: fmt.Sprintf("%d", 100+w),
		})
	}

	store := &stubIndicators{
		inds:   []models.Indicator{{ID: 1, Ticker: "SPY"}, {ID: 2, Ticker: "QQQ"}},
		stored: map[int64]decimal.Decimal{},
	}
	job := NewIndicatorJob(store, stubBars{"SPY": bars}, config.IndicatorConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9})

	sum, err := Run[IndicatorSubject](context.Background(), job, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Updated)
	assert.Contains(t, store.stored, int64(1))
}

func TestWarningLog_CapsMessagesButCountsAll(t *testing.T) {
	ctx, wl := WithWarningLog(context.Background())
	for i := 0; i < maxWarningMessages+10; i++ {
		AddWarning(ctx, models.WarnUnparseableDate, "row %d", i)
	}
	AddWarning(ctx, models.WarnIncompleteBar, "short bar")

	assert.Len(t, wl.Warnings(), maxWarningMessages)
	assert.Equal(t, "row 0", wl.Warnings()[0].Message)
	assert.Equal(t, maxWarningMessages+10, wl.Count(models.WarnUnparseableDate))
	assert.Equal(t, maxWarningMessages+11, wl.Total())

	// no log in the context: nothing to record into
	AddWarning(context.Background(), models.WarnIncompleteBar, "ignored")
}
