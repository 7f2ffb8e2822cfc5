package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSale = errors.New("invalid sale")

	yearMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	hundred          = decimal.NewFromInt(100)
)

// CalculateSale derives profit/loss and return rate from a sale.
//
// profit_loss = (sale - purchase) * quantity - fee, truncated toward zero.
// return_rate = (sale - purchase) / purchase * 100 at full precision, or 0 when purchase <= 0.
func CalculateSale(req *models.SaleRequest) (profitLoss, returnRate decimal.Decimal) {
	diff := req.SalePrice.Sub(req.PurchasePrice)
	profitLoss = diff.Mul(req.SaleQuantity).Sub(req.TransactionFee).Truncate(0)

	returnRate = decimal.Zero
	if req.PurchasePrice.IsPositive() {
		returnRate = diff.DivRound(req.PurchasePrice, 16).Mul(hundred)
	}
	return profitLoss, returnRate
}

// ValidateSale checks the shape of a sale request
func ValidateSale(req *models.SaleRequest) error {
	if !yearMonthPattern.MatchString(req.YearMonth) {
		return fmt.Errorf("%w: year_month must be YYYY-MM, got %q", ErrInvalidSale, req.YearMonth)
	}
	for name, v := range map[string]decimal.Decimal{
		"sale_quantity":   req.SaleQuantity,
		"purchase_price":  req.PurchasePrice,
		"sale_price":      req.SalePrice,
		"transaction_fee": req.TransactionFee,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidSale, name)
		}
	}
	req.TransactionFee = req.TransactionFee.Truncate(0)
	return nil
}

// SaleService records ISA sales with their derived fields
type SaleService struct {
	saleRepo    *repository.SaleRepository
	accountRepo *repository.AccountRepository
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo *repository.SaleRepository, accountRepo *repository.AccountRepository) *SaleService {
	return &SaleService{saleRepo: saleRepo, accountRepo: accountRepo}
}

func toSale(req *models.SaleRequest) *models.Sale {
	profitLoss, returnRate := CalculateSale(req)
	return &models.Sale{
		AccountID:      req.AccountID,
		YearMonth:      req.YearMonth,
		StockCode:      req.StockCode,
		SaleQuantity:   req.SaleQuantity,
		PurchasePrice:  req.PurchasePrice,
		SalePrice:      req.SalePrice,
		TransactionFee: req.TransactionFee,
		ProfitLoss:     profitLoss,
		ReturnRate:     returnRate,
	}
}

func (s *SaleService) checkAccount(ctx context.Context, accountID int64) error {
	ok, err := s.accountRepo.Exists(ctx, models.AccountKindISA, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrAccountNotFound
	}
	return nil
}

// Create validates, derives and stores a sale
func (s *SaleService) Create(ctx context.Context, req *models.SaleRequest) (*models.Sale, error) {
	defer TrackTime("SaleService.Create", time.Now())

	if err := ValidateSale(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}
	id, err := s.saleRepo.CreateSale(ctx, toSale(req))
	if err != nil {
		return nil, err
	}
	return s.saleRepo.GetSale(ctx, id)
}

// Update validates, re-derives and rewrites a sale
func (s *SaleService) Update(ctx context.Context, id int64, req *models.SaleRequest) (*models.Sale, error) {
	if err := ValidateSale(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}
	if err := s.saleRepo.UpdateSale(ctx, id, toSale(req)); err != nil {
		return nil, err
	}
	return s.saleRepo.GetSale(ctx, id)
}

// ValidateAccountDividend checks the shape of a dividend receipt and drops fractional won
func ValidateAccountDividend(req *models.AccountDividendRequest) error {
	if !yearMonthPattern.MatchString(req.YearMonth) {
		return fmt.Errorf("%w: year_month must be YYYY-MM, got %q", ErrInvalidSale, req.YearMonth)
	}
	if req.DividendAmount.IsNegative() {
		return fmt.Errorf("%w: dividend_amount must not be negative", ErrInvalidSale)
	}
	req.DividendAmount = req.DividendAmount.Truncate(0)
	return nil
}

// CreateDividend validates and stores a dividend receipt
func (s *SaleService) CreateDividend(ctx context.Context, req *models.AccountDividendRequest) (*models.AccountDividend, error) {
	if err := ValidateAccountDividend(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}
	id, err := s.saleRepo.CreateDividend(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.saleRepo.GetDividend(ctx, id)
}

// UpdateDividend validates and rewrites a dividend receipt
func (s *SaleService) UpdateDividend(ctx context.Context, id int64, req *models.AccountDividendRequest) (*models.AccountDividend, error) {
	if err := ValidateAccountDividend(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}
	if err := s.saleRepo.UpdateDividend(ctx, id, req); err != nil {
		return nil, err
	}
	return s.saleRepo.GetDividend(ctx, id)
}

// ValidYearMonth reports whether s is a YYYY-MM month
func ValidYearMonth(s string) bool {
	return yearMonthPattern.MatchString(s)
}
