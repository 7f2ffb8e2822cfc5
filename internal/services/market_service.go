package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/util"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidETF        = errors.New("invalid etf")
	ErrInvalidMarketData = errors.New("invalid market data")
)

// MaxMonthsAgo bounds the period endpoints
const MaxMonthsAgo = 240

// ValidateETF trims and checks an ETF body. The tax type is only kept for domestic ETFs.
func ValidateETF(m models.Market, req *models.ETFRequest) error {
	req.Ticker = strings.TrimSpace(req.Ticker)
	req.Name = strings.TrimSpace(req.Name)
	if req.Ticker == "" || req.Name == "" {
		return fmt.Errorf("%w: ticker and name are required", ErrInvalidETF)
	}
	if m == models.MarketDomestic && len(req.Ticker) != StockCodeLength {
		return fmt.Errorf("%w: domestic tickers are %d characters", ErrInvalidETF, StockCodeLength)
	}
	if m == models.MarketUSA {
		req.Ticker = strings.ToUpper(req.Ticker)
		req.ETFTaxType = nil
	}
	return nil
}

// ValidateBar checks a manually entered daily bar. The key fields are only required on create.
func ValidateBar(b *models.DailyBar, create bool) error {
	if create && (b.ETFID <= 0 || b.Date.IsZero()) {
		return fmt.Errorf("%w: etf_id and date are required", ErrInvalidMarketData)
	}
	for _, v := range []decimal.Decimal{b.Open, b.High, b.Low, b.Close} {
		if v.IsNegative() {
			return fmt.Errorf("%w: prices must not be negative", ErrInvalidMarketData)
		}
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: volume must not be negative", ErrInvalidMarketData)
	}
	return nil
}

// ValidateETFDividend checks a manually entered distribution. Domestic rows need a payment date.
func ValidateETFDividend(m models.Market, d *models.ETFDividend, create bool) error {
	if create && (d.ETFID <= 0 || d.RecordDate.IsZero()) {
		return fmt.Errorf("%w: etf_id and record_date are required", ErrInvalidMarketData)
	}
	if d.DividendAmount.IsNegative() {
		return fmt.Errorf("%w: dividend_amt must not be negative", ErrInvalidMarketData)
	}
	if m == models.MarketDomestic && (d.PaymentDate == nil || d.PaymentDate.IsZero()) {
		return fmt.Errorf("%w: payment_date is required for domestic dividends", ErrInvalidMarketData)
	}
	return nil
}

// ValidateExchangeRate checks a manually entered USD/KRW rate
func ValidateExchangeRate(e *models.ExchangeRate, create bool) error {
	if create && e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidMarketData)
	}
	if !e.ExchangeRate.IsPositive() {
		return fmt.Errorf("%w: exchange_rate must be positive", ErrInvalidMarketData)
	}
	return nil
}

// ValidateIndicator checks an indicator body. Creates need ticker and indicator_nm; updates are partial.
func ValidateIndicator(req *models.IndicatorRequest, create bool) error {
	if req.Ticker != nil {
		t := strings.ToUpper(strings.TrimSpace(*req.Ticker))
		req.Ticker = &t
	}
	if create && (req.Ticker == nil || *req.Ticker == "" || req.IndicatorName == nil || *req.IndicatorName == "") {
		return fmt.Errorf("%w: ticker and indicator_nm are required", ErrInvalidMarketData)
	}
	return nil
}

// PeriodStart returns the first date of a months-ago window ending today
func PeriodStart(now time.Time, monthsAgo int) (time.Time, error) {
	if monthsAgo < 1 || monthsAgo > MaxMonthsAgo {
		return time.Time{}, fmt.Errorf("%w: months_ago must be between 1 and %d", ErrInvalidETF, MaxMonthsAgo)
	}
	return util.MonthsAgo(now, monthsAgo), nil
}

// MarketService serves ETF reference data with its chart and dividend history
type MarketService struct {
	etfRepo      *repository.ETFRepository
	chartRepo    *repository.ChartRepository
	dividendRepo *repository.ETFDividendRepository
}

// NewMarketService creates a new MarketService
func NewMarketService(etfRepo *repository.ETFRepository, chartRepo *repository.ChartRepository, dividendRepo *repository.ETFDividendRepository) *MarketService {
	return &MarketService{etfRepo: etfRepo, chartRepo: chartRepo, dividendRepo: dividendRepo}
}

// CreateETF validates and inserts an ETF
func (s *MarketService) CreateETF(ctx context.Context, m models.Market, req *models.ETFRequest) (*models.ETF, error) {
	if err := ValidateETF(m, req); err != nil {
		return nil, err
	}
	id, err := s.etfRepo.Create(ctx, m, req)
	if err != nil {
		return nil, err
	}
	return s.etfRepo.GetByID(ctx, m, id)
}

// UpdateETF validates and rewrites an ETF
func (s *MarketService) UpdateETF(ctx context.Context, m models.Market, id int64, req *models.ETFRequest) (*models.ETF, error) {
	if err := ValidateETF(m, req); err != nil {
		return nil, err
	}
	if err := s.etfRepo.Update(ctx, m, id, req); err != nil {
		return nil, err
	}
	return s.etfRepo.GetByID(ctx, m, id)
}

// BulkCreateETFs inserts the valid ETFs of reqs, skipping tickers that already exist
func (s *MarketService) BulkCreateETFs(ctx context.Context, m models.Market, reqs []models.ETFRequest) *models.BulkCreateResponse {
	defer TrackTime("MarketService.BulkCreateETFs", time.Now())

	resp := &models.BulkCreateResponse{Errors: []string{}}
	valid := make([]models.ETFRequest, 0, len(reqs))
	for i := range reqs {
		if err := ValidateETF(m, &reqs[i]); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		valid = append(valid, reqs[i])
	}

	inserted, skipped, errs := s.etfRepo.BulkCreate(ctx, m, valid)
	resp.Inserted = inserted
	resp.Skipped = skipped
	for _, err := range errs {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp
}

func (s *MarketService) requireETF(ctx context.Context, m models.Market, etfID int64) error {
	_, err := s.etfRepo.GetByID(ctx, m, etfID)
	return err
}

// ChartPeriod returns the bars of an ETF from monthsAgo months back to today, oldest first
func (s *MarketService) ChartPeriod(ctx context.Context, m models.Market, etfID int64, monthsAgo int) ([]models.DailyBar, error) {
	from, err := PeriodStart(time.Now(), monthsAgo)
	if err != nil {
		return nil, err
	}
	if err := s.requireETF(ctx, m, etfID); err != nil {
		return nil, err
	}
	return s.chartRepo.ListSince(ctx, m, etfID, from)
}

// DividendPeriod returns the distributions of an ETF from monthsAgo months back to today, oldest first
func (s *MarketService) DividendPeriod(ctx context.Context, m models.Market, etfID int64, monthsAgo int) ([]models.ETFDividend, error) {
	from, err := PeriodStart(time.Now(), monthsAgo)
	if err != nil {
		return nil, err
	}
	if err := s.requireETF(ctx, m, etfID); err != nil {
		return nil, err
	}
	return s.dividendRepo.ListSince(ctx, m, etfID, from)
}
