package models

import (
	"github.com/shopspring/decimal"
)

// AccountKind identifies one of the tax-advantaged account families.
type AccountKind string

const (
	AccountKindISA     AccountKind = "isa"
	AccountKindIRP     AccountKind = "irp"
	AccountKindPension AccountKind = "pension_fund"
)

// AccountKinds lists every supported account family
var AccountKinds = []AccountKind{AccountKindISA, AccountKindIRP, AccountKindPension}

// Valid reports whether k is a known account kind
func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindISA, AccountKindIRP, AccountKindPension:
		return true
	}
	return false
}

// Account is the projection returned for ISA, IRP and pension-fund accounts.
// FinancialInstitutionName comes from a LEFT JOIN and is nil when the code is unknown.
// NonTaxType is only populated for ISA accounts.
type Account struct {
	ID                       int64           `json:"id"`
	Kind                     AccountKind     `json:"kind"`
	FinancialInstitutionCode string          `json:"financial_institution_code"`
	FinancialInstitutionName *string         `json:"financial_institution_name"`
	AccountNumber            string          `json:"account_number"`
	RegistrationDate         *Date           `json:"registration_date"`
	CashBalance              decimal.Decimal `json:"cash_balance"`
	AccountStatusCode        string          `json:"account_status_code"`
	NonTaxType               *string         `json:"non_tax_type,omitempty"`
}

// AccountRequest is the create/update body for accounts
type AccountRequest struct {
	FinancialInstitutionCode string          `json:"financial_institution_code" binding:"required"`
	AccountNumber            string          `json:"account_number" binding:"required"`
	RegistrationDate         *Date           `json:"registration_date"`
	CashBalance              decimal.Decimal `json:"cash_balance"`
	AccountStatusCode        string          `json:"account_status_code" binding:"required"`
	NonTaxType               *string         `json:"non_tax_type"`
}

// AccountWithDetails combines an account with its holdings
type AccountWithDetails struct {
	Account
	Details []Holding `json:"details"`
}

// Holding is one position line of an account, unique per (account_id, stock_code).
// StockName is resolved from the ETF reference tables and is nil when unknown.
type Holding struct {
	ID               int64           `json:"id"`
	AccountID        int64           `json:"account_id"`
	StockCode        string          `json:"stock_code"`
	StockName        *string         `json:"stock_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	PurchaseAvgPrice decimal.Decimal `json:"purchase_avg_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	PurchaseFee      decimal.Decimal `json:"purchase_fee"`
	SaleFee          decimal.Decimal `json:"sale_fee"`
}

// HoldingRequest is the create/update body for a holding line
type HoldingRequest struct {
	AccountID        int64           `json:"account_id" binding:"required"`
	StockCode        string          `json:"stock_code" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	PurchaseAvgPrice decimal.Decimal `json:"purchase_avg_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	PurchaseFee      decimal.Decimal `json:"purchase_fee"`
	SaleFee          decimal.Decimal `json:"sale_fee"`
}

// Sale is an ISA sale record with its derived profit/loss and return rate
type Sale struct {
	ID             int64           `json:"id"`
	AccountID      int64           `json:"account_id"`
	YearMonth      string          `json:"year_month"`
	StockCode      string          `json:"stock_code"`
	StockName      *string         `json:"stock_name"`
	SaleQuantity   decimal.Decimal `json:"sale_quantity"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	TransactionFee decimal.Decimal `json:"transaction_fee"`
	ProfitLoss     decimal.Decimal `json:"profit_loss"`
	ReturnRate     decimal.Decimal `json:"return_rate"`
}

// SaleRequest is the create/update body for a sale record.
// profit_loss and return_rate are always computed server-side.
type SaleRequest struct {
	AccountID      int64           `json:"account_id" binding:"required"`
	YearMonth      string          `json:"year_month" binding:"required"`
	StockCode      string          `json:"stock_code" binding:"required"`
	SaleQuantity   decimal.Decimal `json:"sale_quantity"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	TransactionFee decimal.Decimal `json:"transaction_fee"`
}

// AccountDividend is a monthly dividend receipt in an ISA account
type AccountDividend struct {
	ID             int64           `json:"id"`
	AccountID      int64           `json:"account_id"`
	YearMonth      string          `json:"year_month"`
	StockCode      string          `json:"stock_code"`
	StockName      *string         `json:"stock_name"`
	DividendAmount decimal.Decimal `json:"dividend_amount"`
}

// AccountDividendRequest is the create/update body for a dividend receipt
type AccountDividendRequest struct {
	AccountID      int64           `json:"account_id" binding:"required"`
	YearMonth      string          `json:"year_month" binding:"required"`
	StockCode      string          `json:"stock_code" binding:"required"`
	DividendAmount decimal.Decimal `json:"dividend_amount"`
}

// HoldingUploadRow is one validated spreadsheet row. Row is the 1-based sheet row number.
type HoldingUploadRow struct {
	Row              int
	StockCode        string
	Quantity         decimal.Decimal
	PurchaseAvgPrice decimal.Decimal
	CurrentPrice     decimal.Decimal
	PurchaseFee      decimal.Decimal
}
