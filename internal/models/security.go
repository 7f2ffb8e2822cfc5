package models

import (
	"github.com/shopspring/decimal"
)

// Market selects the domestic (KRX) or USA family of instrument tables
type Market string

const (
	MarketDomestic Market = "domestic"
	MarketUSA      Market = "usa"
)

// ETF is a listed exchange-traded fund. ETFTaxType is only used for domestic ETFs.
type ETF struct {
	ID         int64   `json:"id"`
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	ETFType    *string `json:"etf_type"`
	ETFTaxType *string `json:"etf_tax_type,omitempty"`
}

// ETFRequest is the create/update body for an ETF
type ETFRequest struct {
	Ticker     string  `json:"ticker" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	ETFType    *string `json:"etf_type"`
	ETFTaxType *string `json:"etf_tax_type"`
}

// DailyBar is one OHLCV observation for an ETF, unique per (etf_id, date).
// Domestic bars are whole won; USA bars carry up to six decimals.
type DailyBar struct {
	ID     int64           `json:"id"`
	ETFID  int64           `json:"etf_id"`
	Date   Date            `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// ETFDividend is one distribution, unique per (etf_id, record_date).
// PaymentDate and TaxableAmount are only recorded for domestic ETFs.
type ETFDividend struct {
	ID             int64            `json:"id"`
	ETFID          int64            `json:"etf_id"`
	RecordDate     Date             `json:"record_date"`
	PaymentDate    *Date            `json:"payment_date,omitempty"`
	DividendAmount decimal.Decimal  `json:"dividend_amt"`
	TaxableAmount  *decimal.Decimal `json:"taxable_amt,omitempty"`
}

// ExchangeRate is the USD/KRW rate for one date
type ExchangeRate struct {
	ID           int64           `json:"id"`
	Date         Date            `json:"date"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// Indicator is a tracked USA market indicator with its latest weekly MACD oscillator
type Indicator struct {
	ID                   int64            `json:"id"`
	Ticker               string           `json:"ticker"`
	IndicatorName        string           `json:"indicator_nm"`
	OrderNo              int              `json:"order_no"`
	WeeklyMACDOscillator *decimal.Decimal `json:"weekly_macd_oscillator"`
}

// IndicatorRequest is the create body; on update only the supplied fields change.
type IndicatorRequest struct {
	Ticker               *string          `json:"ticker"`
	IndicatorName        *string          `json:"indicator_nm"`
	OrderNo              *int             `json:"order_no"`
	WeeklyMACDOscillator *decimal.Decimal `json:"weekly_macd_oscillator"`
}
