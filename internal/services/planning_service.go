package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/shopspring/decimal"
)

var ErrInvalidPlanning = errors.New("invalid planning value")

// PlanningService validates expenses, income targets and the early-retirement setting
type PlanningService struct {
	planningRepo *repository.PlanningRepository
}

// NewPlanningService creates a new PlanningService
func NewPlanningService(planningRepo *repository.PlanningRepository) *PlanningService {
	return &PlanningService{planningRepo: planningRepo}
}

// ValidateExpense checks the type and truncates the amount to whole won
func ValidateExpense(req *models.ExpenseRequest) error {
	if req.Type != models.ExpenseTypeFixed && req.Type != models.ExpenseTypeVariable {
		return fmt.Errorf("%w: type must be 'fixed' or 'variable'", ErrInvalidPlanning)
	}
	if req.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidPlanning)
	}
	req.Amount = req.Amount.Truncate(0)
	return nil
}

// ValidateIncomeTarget checks the type and truncates the amount to whole won
func ValidateIncomeTarget(req *models.IncomeTargetRequest) error {
	if req.Type != models.IncomeTypeStockSale && req.Type != models.IncomeTypeDividend {
		return fmt.Errorf("%w: type must be 'stock_sale' or 'dividend'", ErrInvalidPlanning)
	}
	if req.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidPlanning)
	}
	req.Amount = req.Amount.Truncate(0)
	return nil
}

// StandbyFund is investable_assets * ratio / 100 truncated to whole won
func StandbyFund(investableAssets, ratio decimal.Decimal) decimal.Decimal {
	return investableAssets.Mul(ratio).Div(hundred).Truncate(0)
}

// BuildRetirementSetting validates a request and fills in the derived standby fund
func BuildRetirementSetting(req *models.RetirementSettingRequest) (*models.RetirementSetting, error) {
	switch req.DividendOption {
	case models.DividendOptionMedium, models.DividendOptionHigh, models.DividendOptionUltraHigh:
	default:
		return nil, fmt.Errorf("%w: dividend_option must be 'medium', 'high' or 'ultra_high'", ErrInvalidPlanning)
	}
	if req.InvestableAssets.IsNegative() {
		return nil, fmt.Errorf("%w: investable_assets must not be negative", ErrInvalidPlanning)
	}
	if req.StandbyFundRatio.IsNegative() || req.StandbyFundRatio.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: standby_fund_ratio must be between 0 and 100", ErrInvalidPlanning)
	}

	s := &models.RetirementSetting{
		ID:                       1,
		InvestableAssets:         req.InvestableAssets.Truncate(0),
		StandbyFundRatio:         req.StandbyFundRatio.Round(2),
		DividendOption:           req.DividendOption,
		AdditionalRequiredAssets: req.AdditionalRequiredAssets,
	}
	if req.StandbyFund != nil {
		s.StandbyFund = req.StandbyFund.Truncate(0)
	} else {
		s.StandbyFund = StandbyFund(s.InvestableAssets, s.StandbyFundRatio)
	}
	if s.AdditionalRequiredAssets != nil {
		v := s.AdditionalRequiredAssets.Truncate(0)
		s.AdditionalRequiredAssets = &v
	}
	return s, nil
}

// ListExpenses returns expenses, optionally of one type
func (s *PlanningService) ListExpenses(ctx context.Context, t models.ExpenseType, page models.Page) ([]models.Expense, error) {
	return s.planningRepo.ListExpenses(ctx, t, page.Skip, page.Limit)
}

// CreateExpense validates and inserts an expense
func (s *PlanningService) CreateExpense(ctx context.Context, req *models.ExpenseRequest) (*models.Expense, error) {
	if err := ValidateExpense(req); err != nil {
		return nil, err
	}
	return s.planningRepo.CreateExpense(ctx, req)
}

// UpdateExpense validates and rewrites an expense
func (s *PlanningService) UpdateExpense(ctx context.Context, id int64, req *models.ExpenseRequest) (*models.Expense, error) {
	if err := ValidateExpense(req); err != nil {
		return nil, err
	}
	return s.planningRepo.UpdateExpense(ctx, id, req)
}

// ListIncomeTargets returns income targets, optionally of one type
func (s *PlanningService) ListIncomeTargets(ctx context.Context, t models.IncomeType, page models.Page) ([]models.IncomeTarget, error) {
	return s.planningRepo.ListIncomeTargets(ctx, t, page.Skip, page.Limit)
}

// CreateIncomeTarget validates and inserts an income target
func (s *PlanningService) CreateIncomeTarget(ctx context.Context, req *models.IncomeTargetRequest) (*models.IncomeTarget, error) {
	if err := ValidateIncomeTarget(req); err != nil {
		return nil, err
	}
	return s.planningRepo.CreateIncomeTarget(ctx, req)
}

// UpdateIncomeTarget validates and rewrites an income target
func (s *PlanningService) UpdateIncomeTarget(ctx context.Context, id int64, req *models.IncomeTargetRequest) (*models.IncomeTarget, error) {
	if err := ValidateIncomeTarget(req); err != nil {
		return nil, err
	}
	return s.planningRepo.UpdateIncomeTarget(ctx, id, req)
}

// SaveRetirementSetting creates or replaces the single early-retirement row
func (s *PlanningService) SaveRetirementSetting(ctx context.Context, req *models.RetirementSettingRequest) (*models.RetirementSetting, error) {
	setting, err := BuildRetirementSetting(req)
	if err != nil {
		return nil, err
	}
	if err := s.planningRepo.SaveRetirementSetting(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
