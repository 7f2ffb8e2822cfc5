package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fintrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSaleNotFound            = errors.New("sale not found")
	ErrAccountDividendNotFound = errors.New("account dividend not found")
)

// SaleRepository handles ISA sale records and ISA dividend receipts
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new SaleRepository
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

const saleSelect = `
	SELECT s.id, s.account_id, s.year_month, s.stock_code, e.name, s.sale_quantity, s.purchase_price,
	       s.sale_price, s.transaction_fee, s.profit_loss, s.return_rate
	FROM isa_account_sale s
	LEFT JOIN domestic_etfs e ON e.ticker = s.stock_code
`

func scanSales(rows pgx.Rows) ([]models.Sale, error) {
	defer rows.Close()
	out := []models.Sale{}
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.AccountID, &s.YearMonth, &s.StockCode, &s.StockName, &s.SaleQuantity,
			&s.PurchasePrice, &s.SalePrice, &s.TransactionFee, &s.ProfitLoss, &s.ReturnRate); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSales returns sale records, newest month first
func (r *SaleRepository) ListSales(ctx context.Context, skip, limit int) ([]models.Sale, error) {
	rows, err := r.pool.Query(ctx, saleSelect+` ORDER BY s.year_month DESC, s.id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	return scanSales(rows)
}

// ListSalesByAccount returns one account's sales, optionally limited to a YYYY-MM month
func (r *SaleRepository) ListSalesByAccount(ctx context.Context, accountID int64, yearMonth string) ([]models.Sale, error) {
	rows, err := r.pool.Query(ctx,
		saleSelect+` WHERE s.account_id = $1 AND ($2::text = '' OR s.year_month = $2) ORDER BY s.year_month DESC, s.id`,
		accountID, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for account %d: %w", accountID, err)
	}
	return scanSales(rows)
}

// GetSale retrieves a sale by ID
func (r *SaleRepository) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	rows, err := r.pool.Query(ctx, saleSelect+` WHERE s.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	list, err := scanSales(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrSaleNotFound
	}
	return &list[0], nil
}

// CreateSale stores a sale whose derived fields are already computed
func (r *SaleRepository) CreateSale(ctx context.Context, s *models.Sale) (int64, error) {
	query := `
		INSERT INTO isa_account_sale (account_id, year_month, stock_code, sale_quantity, purchase_price,
		                              sale_price, transaction_fee, profit_loss, return_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, s.AccountID, s.YearMonth, s.StockCode, numeric(s.SaleQuantity),
		numeric(s.PurchasePrice), numeric(s.SalePrice), numeric(s.TransactionFee),
		numeric(s.ProfitLoss), numeric(s.ReturnRate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create sale: %w", mapConstraintError(err))
	}
	return id, nil
}

// UpdateSale rewrites a sale including its derived fields
func (r *SaleRepository) UpdateSale(ctx context.Context, id int64, s *models.Sale) error {
	query := `
		UPDATE isa_account_sale
		SET account_id = $1, year_month = $2, stock_code = $3, sale_quantity = $4, purchase_price = $5,
		    sale_price = $6, transaction_fee = $7, profit_loss = $8, return_rate = $9
		WHERE id = $10
	`
	result, err := r.pool.Exec(ctx, query, s.AccountID, s.YearMonth, s.StockCode, numeric(s.SaleQuantity),
		numeric(s.PurchasePrice), numeric(s.SalePrice), numeric(s.TransactionFee),
		numeric(s.ProfitLoss), numeric(s.ReturnRate), id)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

// DeleteSale removes a sale record
func (r *SaleRepository) DeleteSale(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM isa_account_sale WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

const dividendSelect = `
	SELECT d.id, d.account_id, d.year_month, d.stock_code, e.name, d.dividend_amount
	FROM isa_account_dividend d
	LEFT JOIN domestic_etfs e ON e.ticker = d.stock_code
`

func scanAccountDividends(rows pgx.Rows) ([]models.AccountDividend, error) {
	defer rows.Close()
	out := []models.AccountDividend{}
	for rows.Next() {
		var d models.AccountDividend
		if err := rows.Scan(&d.ID, &d.AccountID, &d.YearMonth, &d.StockCode, &d.StockName, &d.DividendAmount); err != nil {
			return nil, fmt.Errorf("failed to scan account dividend: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListDividends returns ISA dividend receipts, newest month first
func (r *SaleRepository) ListDividends(ctx context.Context, skip, limit int) ([]models.AccountDividend, error) {
	rows, err := r.pool.Query(ctx, dividendSelect+` ORDER BY d.year_month DESC, d.id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query account dividends: %w", err)
	}
	return scanAccountDividends(rows)
}

// ListDividendsByAccount returns one account's receipts, optionally limited to a YYYY-MM month
func (r *SaleRepository) ListDividendsByAccount(ctx context.Context, accountID int64, yearMonth string) ([]models.AccountDividend, error) {
	rows, err := r.pool.Query(ctx,
		dividendSelect+` WHERE d.account_id = $1 AND ($2::text = '' OR d.year_month = $2) ORDER BY d.year_month DESC, d.id`,
		accountID, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends for account %d: %w", accountID, err)
	}
	return scanAccountDividends(rows)
}

// GetDividend retrieves a dividend receipt by ID
func (r *SaleRepository) GetDividend(ctx context.Context, id int64) (*models.AccountDividend, error) {
	rows, err := r.pool.Query(ctx, dividendSelect+` WHERE d.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account dividend: %w", err)
	}
	list, err := scanAccountDividends(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrAccountDividendNotFound
	}
	return &list[0], nil
}

// CreateDividend inserts a dividend receipt
func (r *SaleRepository) CreateDividend(ctx context.Context, req *models.AccountDividendRequest) (int64, error) {
	query := `
		INSERT INTO isa_account_dividend (account_id, year_month, stock_code, dividend_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, req.AccountID, req.YearMonth, req.StockCode, numeric(req.DividendAmount)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create account dividend: %w", mapConstraintError(err))
	}
	return id, nil
}

// UpdateDividend rewrites a dividend receipt
func (r *SaleRepository) UpdateDividend(ctx context.Context, id int64, req *models.AccountDividendRequest) error {
	query := `
		UPDATE isa_account_dividend
		SET account_id = $1, year_month = $2, stock_code = $3, dividend_amount = $4
		WHERE id = $5
	`
	result, err := r.pool.Exec(ctx, query, req.AccountID, req.YearMonth, req.StockCode, numeric(req.DividendAmount), id)
	if err != nil {
		return fmt.Errorf("failed to update account dividend: %w", mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrAccountDividendNotFound
	}
	return nil
}

// DeleteDividend removes a dividend receipt
func (r *SaleRepository) DeleteDividend(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM isa_account_dividend WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account dividend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountDividendNotFound
	}
	return nil
}
