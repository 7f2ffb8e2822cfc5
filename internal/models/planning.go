package models

import (
	"github.com/shopspring/decimal"
)

// ExpenseType distinguishes fixed from variable spending
type ExpenseType string

const (
	ExpenseTypeFixed    ExpenseType = "fixed"
	ExpenseTypeVariable ExpenseType = "variable"
)

// Expense is a budget line
type Expense struct {
	ID     int64           `json:"id"`
	Type   ExpenseType     `json:"type"`
	Item   string          `json:"item"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseRequest is the create/update body for an expense
type ExpenseRequest struct {
	Type   ExpenseType     `json:"type" binding:"required"`
	Item   string          `json:"item" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// IncomeType distinguishes capital-gain income from dividend income
type IncomeType string

const (
	IncomeTypeStockSale IncomeType = "stock_sale"
	IncomeTypeDividend  IncomeType = "dividend"
)

// IncomeTarget is a yearly income goal line
type IncomeTarget struct {
	ID     int64           `json:"id"`
	Type   IncomeType      `json:"type"`
	Item   string          `json:"item"`
	Amount decimal.Decimal `json:"amount"`
}

// IncomeTargetRequest is the create/update body for an income target
type IncomeTargetRequest struct {
	Type   IncomeType      `json:"type" binding:"required"`
	Item   string          `json:"item" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// DividendOption is the dividend-yield tier used for retirement planning
type DividendOption string

const (
	DividendOptionMedium    DividendOption = "medium"
	DividendOptionHigh      DividendOption = "high"
	DividendOptionUltraHigh DividendOption = "ultra_high"
)

// RetirementSetting holds the single early-retirement planning row (id is always 1)
type RetirementSetting struct {
	ID                       int              `json:"id"`
	InvestableAssets         decimal.Decimal  `json:"investable_assets"`
	StandbyFundRatio         decimal.Decimal  `json:"standby_fund_ratio"`
	StandbyFund              decimal.Decimal  `json:"standby_fund"`
	DividendOption           DividendOption   `json:"dividend_option"`
	AdditionalRequiredAssets *decimal.Decimal `json:"additional_required_assets"`
}

// RetirementSettingRequest is the create-or-update body.
// StandbyFund is derived from InvestableAssets and StandbyFundRatio when omitted.
type RetirementSettingRequest struct {
	InvestableAssets         decimal.Decimal  `json:"investable_assets"`
	StandbyFundRatio         decimal.Decimal  `json:"standby_fund_ratio"`
	StandbyFund              *decimal.Decimal `json:"standby_fund"`
	DividendOption           DividendOption   `json:"dividend_option" binding:"required"`
	AdditionalRequiredAssets *decimal.Decimal `json:"additional_required_assets"`
}
