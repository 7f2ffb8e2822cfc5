package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/upsert"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrHoldingNotFound = errors.New("holding not found")

// HoldingRepository handles database operations for account detail lines
type HoldingRepository struct {
	pool *pgxpool.Pool
}

// NewHoldingRepository creates a new HoldingRepository
func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

func holdingSelect(t accountTables) string {
	return fmt.Sprintf(`
		SELECT d.id, d.account_id, d.stock_code, e.name, d.quantity, d.purchase_avg_price,
		       d.current_price, d.purchase_fee, d.sale_fee
		FROM %s d
		LEFT JOIN domestic_etfs e ON e.ticker = d.stock_code
	`, t.detail)
}

func scanHoldings(rows pgx.Rows) ([]models.Holding, error) {
	defer rows.Close()
	out := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.AccountID, &h.StockCode, &h.StockName, &h.Quantity,
			&h.PurchaseAvgPrice, &h.CurrentPrice, &h.PurchaseFee, &h.SaleFee); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// List returns holdings of every account of one kind
func (r *HoldingRepository) List(ctx context.Context, kind models.AccountKind, skip, limit int) ([]models.Holding, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, holdingSelect(t)+` ORDER BY d.id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s holdings: %w", kind, err)
	}
	return scanHoldings(rows)
}

// ListByAccount returns the holdings of one account ordered by id
func (r *HoldingRepository) ListByAccount(ctx context.Context, kind models.AccountKind, accountID int64) ([]models.Holding, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, holdingSelect(t)+` WHERE d.account_id = $1 ORDER BY d.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s holdings for account %d: %w", kind, accountID, err)
	}
	return scanHoldings(rows)
}

// GetByID retrieves a holding by ID
func (r *HoldingRepository) GetByID(ctx context.Context, kind models.AccountKind, id int64) (*models.Holding, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, holdingSelect(t)+` WHERE d.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s holding: %w", kind, err)
	}
	list, err := scanHoldings(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrHoldingNotFound
	}
	return &list[0], nil
}

// Create inserts a holding line. A second line for the same (account_id, stock_code) yields ErrDuplicateCode.
func (r *HoldingRepository) Create(ctx context.Context, kind models.AccountKind, req *models.HoldingRequest) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (account_id, stock_code, quantity, purchase_avg_price, current_price, purchase_fee, sale_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, t.detail)
	var id int64
	err = r.pool.QueryRow(ctx, query, req.AccountID, req.StockCode, numeric(req.Quantity),
		numeric(req.PurchaseAvgPrice), numeric(req.CurrentPrice), numeric(req.PurchaseFee), numeric(req.SaleFee)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s holding: %w", kind, mapConstraintError(err))
	}
	return id, nil
}

// Update rewrites every column of a holding line
func (r *HoldingRepository) Update(ctx context.Context, kind models.AccountKind, id int64, req *models.HoldingRequest) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET account_id = $1, stock_code = $2, quantity = $3, purchase_avg_price = $4,
		    current_price = $5, purchase_fee = $6, sale_fee = $7
		WHERE id = $8
	`, t.detail)
	result, err := r.pool.Exec(ctx, query, req.AccountID, req.StockCode, numeric(req.Quantity),
		numeric(req.PurchaseAvgPrice), numeric(req.CurrentPrice), numeric(req.PurchaseFee), numeric(req.SaleFee), id)
	if err != nil {
		return fmt.Errorf("failed to update %s holding: %w", kind, mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// Delete removes a holding line
func (r *HoldingRepository) Delete(ctx context.Context, kind models.AccountKind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.detail), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s holding: %w", kind, err)
	}
	if result.RowsAffected() == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// HoldingKey is the natural key of a holding line
type HoldingKey struct {
	AccountID int64
	StockCode string
}

// HoldingTable binds uploaded holding rows to one account kind's detail table.
// Updates leave sale_fee alone; inserts start it at zero.
type HoldingTable struct {
	kind models.AccountKind
	t    accountTables
}

// Table returns the merge binding for kind
func (r *HoldingRepository) Table(kind models.AccountKind) (*HoldingTable, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	return &HoldingTable{kind: kind, t: t}, nil
}

func (h *HoldingTable) Name() string { return h.t.detail }

func (h *HoldingTable) Key(rec models.HoldingRequest) (HoldingKey, bool) {
	if rec.AccountID == 0 || rec.StockCode == "" {
		return HoldingKey{}, false
	}
	return HoldingKey{AccountID: rec.AccountID, StockCode: rec.StockCode}, true
}

func (h *HoldingTable) Find(ctx context.Context, tx pgx.Tx, key HoldingKey) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE account_id = $1 AND stock_code = $2 LIMIT 2`, h.t.detail)
	return upsert.FindOne(ctx, tx, query, key.AccountID, key.StockCode)
}

func (h *HoldingTable) Insert(ctx context.Context, tx pgx.Tx, rec models.HoldingRequest) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (account_id, stock_code, quantity, purchase_avg_price, current_price, purchase_fee, sale_fee)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`, h.t.detail)
	_, err := tx.Exec(ctx, query, rec.AccountID, rec.StockCode, numeric(rec.Quantity),
		numeric(rec.PurchaseAvgPrice), numeric(rec.CurrentPrice), numeric(rec.PurchaseFee))
	return err
}

func (h *HoldingTable) Update(ctx context.Context, tx pgx.Tx, id int64, rec models.HoldingRequest) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET quantity = $1, purchase_avg_price = $2, current_price = $3, purchase_fee = $4
		WHERE id = $5
	`, h.t.detail)
	_, err := tx.Exec(ctx, query, numeric(rec.Quantity), numeric(rec.PurchaseAvgPrice),
		numeric(rec.CurrentPrice), numeric(rec.PurchaseFee), id)
	return err
}
