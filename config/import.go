package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ImportConfig holds the market-data importer settings read from a YAML file.
type ImportConfig struct {
	// Pause is the fixed sleep between two subjects of one run.
	Pause            time.Duration       `yaml:"pause"`
	Naver            NaverConfig         `yaml:"naver"`
	AlphaVantage     AlphaVantageConfig  `yaml:"alphavantage"`
	DomesticChart    DomesticChartConfig `yaml:"domestic_chart"`
	DomesticDividend DividendPageConfig  `yaml:"domestic_dividend"`
	USAChart         USAChartConfig      `yaml:"usa_chart"`
	USADividend      USADividendConfig   `yaml:"usa_dividend"`
	USDKRW           ExchangeRateConfig  `yaml:"usd_krw"`
	Indicators       IndicatorConfig     `yaml:"indicators"`
}

type NaverConfig struct {
	FinanceURL string `yaml:"finance_url"`
	APIURL     string `yaml:"api_url"`
}

type AlphaVantageConfig struct {
	BaseURL string `yaml:"base_url"`
}

type DomesticChartConfig struct {
	Weeks   int    `yaml:"weeks"`
	ETFType string `yaml:"etf_type"`
}

// DividendPageConfig describes a scraped dividend history table.
// Column indexes are zero-based positions of <td> cells within a row.
type DividendPageConfig struct {
	PageURL        string `yaml:"page_url"`
	ETFType        string `yaml:"etf_type"`
	RecordDateCol  int    `yaml:"record_date_col"`
	PaymentDateCol int    `yaml:"payment_date_col"`
	AmountCol      int    `yaml:"amount_col"`
	TaxableCol     int    `yaml:"taxable_col"`
}

type USAChartConfig struct {
	Years   int    `yaml:"years"`
	ETFType string `yaml:"etf_type"`
}

type USADividendConfig struct {
	// Source is "vendor" (AlphaVantage DIVIDENDS) or "scrape" (dividend history page).
	Source  string             `yaml:"source"`
	Years   []int              `yaml:"years"`
	ETFType string             `yaml:"etf_type"`
	Page    DividendPageConfig `yaml:"page"`
}

type ExchangeRateConfig struct {
	Years     int           `yaml:"years"`
	MaxPages  int           `yaml:"max_pages"`
	PagePause time.Duration `yaml:"page_pause"`
}

type IndicatorConfig struct {
	FastPeriod   int `yaml:"fast_period"`
	SlowPeriod   int `yaml:"slow_period"`
	SignalPeriod int `yaml:"signal_period"`
}

// DefaultImportConfig returns the settings used when no YAML file is present.
func DefaultImportConfig() *ImportConfig {
	year := time.Now().Year()
	return &ImportConfig{
		Pause: 500 * time.Millisecond,
		Naver: NaverConfig{
			FinanceURL: "https://finance.naver.com",
			APIURL:     "https://api.finance.naver.com",
		},
		AlphaVantage: AlphaVantageConfig{
			BaseURL: "https://www.alphavantage.co/query",
		},
		DomesticChart: DomesticChartConfig{
			Weeks:   52,
			ETFType: "high_dividend",
		},
		DomesticDividend: DividendPageConfig{
			ETFType:        "high_dividend",
			RecordDateCol:  4,
			PaymentDateCol: 5,
			AmountCol:      7,
			TaxableCol:     8,
		},
		USAChart: USAChartConfig{
			Years: 2,
		},
		USADividend: USADividendConfig{
			Source: "vendor",
			Years:  []int{year - 1, year},
			Page: DividendPageConfig{
				RecordDateCol:  3,
				PaymentDateCol: 4,
				AmountCol:      1,
				TaxableCol:     -1,
			},
		},
		USDKRW: ExchangeRateConfig{
			Years:     2,
			MaxPages:  100,
			PagePause: 500 * time.Millisecond,
		},
		Indicators: IndicatorConfig{
			FastPeriod:   12,
			SlowPeriod:   26,
			SignalPeriod: 9,
		},
	}
}

// LoadImport reads importer settings from path, layered over DefaultImportConfig.
// A missing file yields the defaults.
func LoadImport(path string) (*ImportConfig, error) {
	cfg := DefaultImportConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse import config %s: %w", path, err)
	}

	if cfg.USADividend.Source != "vendor" && cfg.USADividend.Source != "scrape" {
		return nil, fmt.Errorf("usa_dividend.source must be 'vendor' or 'scrape', got %q", cfg.USADividend.Source)
	}
	if cfg.USDKRW.MaxPages <= 0 {
		return nil, fmt.Errorf("usd_krw.max_pages must be positive")
	}

	return cfg, nil
}
