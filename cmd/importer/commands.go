package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/epeers/fintrack/internal/database"
	"github.com/epeers/fintrack/internal/importer"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/scrape"

	"github.com/epeers/fintrack/config"
)

var commands = []subcommands.Command{
	&etfListCmd{},
	&usaETFListCmd{},
	&domesticChartCmd{},
	&domesticDividendCmd{},
	&usaChartCmd{},
	&usaDividendCmd{},
	&usdKRWCmd{},
	&indicatorsCmd{},
}

// jobRunner opens the environment, runs one job and reports its summary
func jobRunner(ctx context.Context, run func(ctx context.Context, e *env) (importer.Summary, error)) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	if report(run(ctx, e)) != 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// etfFlags selects the ETFs a chart or dividend command works on
type etfFlags struct {
	etfType string
	tickers string
}

func (f *etfFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.etfType, "etf-type", "", "only ETFs of this etf_type (default from the import config)")
	fs.StringVar(&f.tickers, "ticker", "", "comma separated tickers; overrides -etf-type")
}

func (f *etfFlags) filter(defaultType string) importer.ETFFilter {
	t := f.etfType
	if t == "" {
		t = defaultType
	}
	return importer.ETFFilter{ETFType: t, Tickers: splitList(f.tickers)}
}

type etfListCmd struct{}

func (*etfListCmd) Name() string     { return "etf-list" }
func (*etfListCmd) Synopsis() string { return "loads the KRX ETF list into domestic_etfs" }
func (*etfListCmd) Usage() string {
	return `etf-list:

	Fetches the Naver ETF item list and inserts tickers not stored yet.
`
}
func (*etfListCmd) SetFlags(*flag.FlagSet) {}
func (*etfListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		job := importer.NewDomesticListingJob(repository.NewETFRepository(e.db.Pool), e.naver())
		return importer.Run[importer.Label](ctx, job, e.options())
	})
}

type usaETFListCmd struct{}

func (*usaETFListCmd) Name() string     { return "usa-etf-list" }
func (*usaETFListCmd) Synopsis() string { return "loads active US ETFs into usa_etfs" }
func (*usaETFListCmd) Usage() string {
	return `usa-etf-list:

	Fetches the AlphaVantage LISTING_STATUS report and inserts active ETFs not stored yet.
	Requires AV_KEY.
`
}
func (*usaETFListCmd) SetFlags(*flag.FlagSet) {}
func (*usaETFListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		av, err := e.alphaVantage()
		if err != nil {
			return importer.Summary{}, err
		}
		job := importer.NewUSAListingJob(repository.NewETFRepository(e.db.Pool), av)
		return importer.Run[importer.Label](ctx, job, e.options())
	})
}

type domesticChartCmd struct {
	etfFlags
	weeks int
}

func (*domesticChartCmd) Name() string     { return "domestic-chart" }
func (*domesticChartCmd) Synopsis() string { return "merges Naver daily bars for domestic ETFs" }
func (*domesticChartCmd) Usage() string {
	return `domestic-chart [-etf-type type] [-ticker codes] [-weeks n]:

	Merges daily OHLCV bars for the last n weeks into domestic_etfs_daily_chart.
`
}
func (c *domesticChartCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.IntVar(&c.weeks, "weeks", 0, "window length in weeks (default from the import config)")
}
func (c *domesticChartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		weeks := c.weeks
		if weeks <= 0 {
			weeks = e.imp.DomesticChart.Weeks
		}
		table, err := repository.NewChartRepository(e.db.Pool).Table(models.MarketDomestic)
		if err != nil {
			return importer.Summary{}, err
		}
		job := importer.NewDomesticChartJob(e.db.Pool, repository.NewETFRepository(e.db.Pool), table,
			e.naver(), c.filter(e.imp.DomesticChart.ETFType), weeks, time.Now())
		return importer.Run[importer.ETFSubject](ctx, job, e.options())
	})
}

type domesticDividendCmd struct {
	etfFlags
}

func (*domesticDividendCmd) Name() string { return "domestic-dividend" }
func (*domesticDividendCmd) Synopsis() string {
	return "merges scraped dividend history for domestic ETFs"
}
func (*domesticDividendCmd) Usage() string {
	return `domestic-dividend [-etf-type type] [-ticker codes]:

	Scrapes the configured dividend table of each ETF into domestic_etfs_dividend.
`
}
func (c *domesticDividendCmd) SetFlags(f *flag.FlagSet) { c.register(f) }
func (c *domesticDividendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		table, err := repository.NewETFDividendRepository(e.db.Pool).Table(models.MarketDomestic)
		if err != nil {
			return importer.Summary{}, err
		}
		page := scrape.NewDividendPage(e.imp.DomesticDividend)
		job := importer.NewDomesticDividendJob(e.db.Pool, repository.NewETFRepository(e.db.Pool), table,
			page, c.filter(e.imp.DomesticDividend.ETFType))
		return importer.Run[importer.ETFSubject](ctx, job, e.options())
	})
}

type usaChartCmd struct {
	etfFlags
	years int
}

func (*usaChartCmd) Name() string     { return "usa-chart" }
func (*usaChartCmd) Synopsis() string { return "merges AlphaVantage daily bars for USA ETFs" }
func (*usaChartCmd) Usage() string {
	return `usa-chart [-etf-type type] [-ticker symbols] [-years n]:

	Merges daily OHLCV bars for the last n years into usa_etfs_daily_chart. Requires AV_KEY.
`
}
func (c *usaChartCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.IntVar(&c.years, "years", 0, "window length in years (default from the import config)")
}
func (c *usaChartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		av, err := e.alphaVantage()
		if err != nil {
			return importer.Summary{}, err
		}
		years := c.years
		if years <= 0 {
			years = e.imp.USAChart.Years
		}
		table, err := repository.NewChartRepository(e.db.Pool).Table(models.MarketUSA)
		if err != nil {
			return importer.Summary{}, err
		}
		job := importer.NewUSAChartJob(e.db.Pool, repository.NewETFRepository(e.db.Pool), table,
			av, c.filter(e.imp.USAChart.ETFType), years, time.Now())
		return importer.Run[importer.ETFSubject](ctx, job, e.options())
	})
}

type usaDividendCmd struct {
	etfFlags
	source string
	years  string
}

func (*usaDividendCmd) Name() string     { return "usa-dividend" }
func (*usaDividendCmd) Synopsis() string { return "merges dividend history for USA ETFs" }
func (*usaDividendCmd) Usage() string {
	return `usa-dividend [-etf-type type] [-ticker symbols] [-source vendor|scrape] [-years 2024,2025]:

	Merges distributions recorded in the given years into usa_etfs_dividend.
	The vendor source requires AV_KEY.
`
}
func (c *usaDividendCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.source, "source", "", "vendor or scrape (default from the import config)")
	f.StringVar(&c.years, "years", "", "comma separated years (default: previous and current year)")
}
func (c *usaDividendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		cfg := e.imp.USADividend
		if c.source != "" {
			cfg.Source = c.source
		}
		years := cfg.Years
		if c.years != "" {
			parsed, err := parseYears(c.years)
			if err != nil {
				return importer.Summary{}, err
			}
			years = parsed
		}

		job, err := c.job(e, cfg, years)
		if err != nil {
			return importer.Summary{}, err
		}
		return importer.Run[importer.ETFSubject](ctx, job, e.options())
	})
}

func (c *usaDividendCmd) job(e *env, cfg config.USADividendConfig, years []int) (*importer.DividendJob, error) {
	table, err := repository.NewETFDividendRepository(e.db.Pool).Table(models.MarketUSA)
	if err != nil {
		return nil, err
	}
	etfs := repository.NewETFRepository(e.db.Pool)
	filter := c.filter(cfg.ETFType)

	if cfg.Source == importer.SourceScrape {
		return importer.NewUSADividendJob(e.db.Pool, etfs, table, cfg.Source, nil, scrape.NewDividendPage(cfg.Page), filter, years)
	}
	av, err := e.alphaVantage()
	if err != nil {
		return nil, err
	}
	return importer.NewUSADividendJob(e.db.Pool, etfs, table, cfg.Source, av, nil, filter, years)
}

type usdKRWCmd struct {
	years    int
	maxPages int
}

func (*usdKRWCmd) Name() string     { return "usd-krw" }
func (*usdKRWCmd) Synopsis() string { return "merges the USD/KRW daily series" }
func (*usdKRWCmd) Usage() string {
	return `usd-krw [-years n] [-max-pages n]:

	Pages through the Naver USD/KRW daily quotes, newest first, until a quote is older than
	n×365 days, and merges them into usd_krw_exchange.
`
}
func (c *usdKRWCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "years", 0, "how far back to go in years (default from the import config)")
	f.IntVar(&c.maxPages, "max-pages", 0, "page limit (default from the import config)")
}
func (c *usdKRWCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		cfg := e.imp.USDKRW
		if c.years > 0 {
			cfg.Years = c.years
		}
		if c.maxPages > 0 {
			cfg.MaxPages = c.maxPages
		}
		job := importer.NewExchangeJob(e.db.Pool, repository.RateTable{}, e.naver(), cfg, time.Now())
		return importer.Run[importer.Label](ctx, job, e.options())
	})
}

type indicatorsCmd struct{}

func (*indicatorsCmd) Name() string { return "indicators" }
func (*indicatorsCmd) Synopsis() string {
	return "recomputes the weekly MACD oscillator of USA indicators"
}
func (*indicatorsCmd) Usage() string {
	return `indicators:

	Fetches daily closes for each row of usa_indicators, resamples them to weeks and stores
	the MACD histogram. Requires AV_KEY.
`
}
func (*indicatorsCmd) SetFlags(*flag.FlagSet) {}
func (*indicatorsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return jobRunner(ctx, func(ctx context.Context, e *env) (importer.Summary, error) {
		av, err := e.alphaVantage()
		if err != nil {
			return importer.Summary{}, err
		}
		job := importer.NewIndicatorJob(repository.NewIndicatorRepository(e.db.Pool), av, e.imp.Indicators)
		return importer.Run[importer.IndicatorSubject](ctx, job, e.options())
	})
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "creates missing tables and indexes" }
func (*migrateCmd) Usage() string {
	return `migrate:

	Applies the embedded schema. Every statement is idempotent.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}
func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("schema is up to date")
	return subcommands.ExitSuccess
}
