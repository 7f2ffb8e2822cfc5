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
	ErrExpenseNotFound           = errors.New("expense not found")
	ErrIncomeTargetNotFound      = errors.New("income target not found")
	ErrRetirementSettingNotFound = errors.New("early retirement setting not found")
)

// PlanningRepository handles expenses, income targets and the retirement setting
type PlanningRepository struct {
	pool *pgxpool.Pool
}

// NewPlanningRepository creates a new PlanningRepository
func NewPlanningRepository(pool *pgxpool.Pool) *PlanningRepository {
	return &PlanningRepository{pool: pool}
}

// ListExpenses returns expenses, optionally filtered by type ("" for all)
func (r *PlanningRepository) ListExpenses(ctx context.Context, expenseType models.ExpenseType, skip, limit int) ([]models.Expense, error) {
	query := `
		SELECT id, type, item, amount
		FROM expense
		WHERE ($1 = '' OR type = $1)
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, string(expenseType), skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	out := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Type, &e.Item, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetExpense retrieves an expense by ID
func (r *PlanningRepository) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	e := &models.Expense{}
	err := r.pool.QueryRow(ctx, `SELECT id, type, item, amount FROM expense WHERE id = $1`, id).
		Scan(&e.ID, &e.Type, &e.Item, &e.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// CreateExpense inserts an expense
func (r *PlanningRepository) CreateExpense(ctx context.Context, req *models.ExpenseRequest) (*models.Expense, error) {
	query := `INSERT INTO expense (type, item, amount) VALUES ($1, $2, $3) RETURNING id`
	e := &models.Expense{Type: req.Type, Item: req.Item, Amount: req.Amount}
	if err := r.pool.QueryRow(ctx, query, string(req.Type), req.Item, numeric(req.Amount)).Scan(&e.ID); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

// UpdateExpense rewrites every field of an expense
func (r *PlanningRepository) UpdateExpense(ctx context.Context, id int64, req *models.ExpenseRequest) (*models.Expense, error) {
	query := `UPDATE expense SET type = $1, item = $2, amount = $3 WHERE id = $4`
	result, err := r.pool.Exec(ctx, query, string(req.Type), req.Item, numeric(req.Amount), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrExpenseNotFound
	}
	return &models.Expense{ID: id, Type: req.Type, Item: req.Item, Amount: req.Amount}, nil
}

// DeleteExpense removes an expense
func (r *PlanningRepository) DeleteExpense(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM expense WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// ListIncomeTargets returns income targets, optionally filtered by type ("" for all)
func (r *PlanningRepository) ListIncomeTargets(ctx context.Context, incomeType models.IncomeType, skip, limit int) ([]models.IncomeTarget, error) {
	query := `
		SELECT id, type, item, amount
		FROM income_target
		WHERE ($1 = '' OR type = $1)
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, string(incomeType), skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query income targets: %w", err)
	}
	defer rows.Close()

	out := []models.IncomeTarget{}
	for rows.Next() {
		var it models.IncomeTarget
		if err := rows.Scan(&it.ID, &it.Type, &it.Item, &it.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan income target: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetIncomeTarget retrieves an income target by ID
func (r *PlanningRepository) GetIncomeTarget(ctx context.Context, id int64) (*models.IncomeTarget, error) {
	it := &models.IncomeTarget{}
	err := r.pool.QueryRow(ctx, `SELECT id, type, item, amount FROM income_target WHERE id = $1`, id).
		Scan(&it.ID, &it.Type, &it.Item, &it.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIncomeTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get income target: %w", err)
	}
	return it, nil
}

// CreateIncomeTarget inserts an income target
func (r *PlanningRepository) CreateIncomeTarget(ctx context.Context, req *models.IncomeTargetRequest) (*models.IncomeTarget, error) {
	query := `INSERT INTO income_target (type, item, amount) VALUES ($1, $2, $3) RETURNING id`
	it := &models.IncomeTarget{Type: req.Type, Item: req.Item, Amount: req.Amount}
	if err := r.pool.QueryRow(ctx, query, string(req.Type), req.Item, numeric(req.Amount)).Scan(&it.ID); err != nil {
		return nil, fmt.Errorf("failed to create income target: %w", err)
	}
	return it, nil
}

// UpdateIncomeTarget rewrites every field of an income target
func (r *PlanningRepository) UpdateIncomeTarget(ctx context.Context, id int64, req *models.IncomeTargetRequest) (*models.IncomeTarget, error) {
	query := `UPDATE income_target SET type = $1, item = $2, amount = $3 WHERE id = $4`
	result, err := r.pool.Exec(ctx, query, string(req.Type), req.Item, numeric(req.Amount), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update income target: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrIncomeTargetNotFound
	}
	return &models.IncomeTarget{ID: id, Type: req.Type, Item: req.Item, Amount: req.Amount}, nil
}

// DeleteIncomeTarget removes an income target
func (r *PlanningRepository) DeleteIncomeTarget(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM income_target WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete income target: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIncomeTargetNotFound
	}
	return nil
}

// GetRetirementSetting returns the single planning row
func (r *PlanningRepository) GetRetirementSetting(ctx context.Context) (*models.RetirementSetting, error) {
	query := `
		SELECT id, investable_assets, standby_fund_ratio, standby_fund, dividend_option, additional_required_assets
		FROM early_retirement_initial_setting
		WHERE id = 1
	`
	s := &models.RetirementSetting{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.ID, &s.InvestableAssets, &s.StandbyFundRatio, &s.StandbyFund, &s.DividendOption, &s.AdditionalRequiredAssets,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRetirementSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get early retirement setting: %w", err)
	}
	return s, nil
}

// SaveRetirementSetting creates row 1 or overwrites it
func (r *PlanningRepository) SaveRetirementSetting(ctx context.Context, s *models.RetirementSetting) error {
	query := `
		INSERT INTO early_retirement_initial_setting
			(id, investable_assets, standby_fund_ratio, standby_fund, dividend_option, additional_required_assets)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			investable_assets = EXCLUDED.investable_assets,
			standby_fund_ratio = EXCLUDED.standby_fund_ratio,
			standby_fund = EXCLUDED.standby_fund,
			dividend_option = EXCLUDED.dividend_option,
			additional_required_assets = EXCLUDED.additional_required_assets
	`
	_, err := r.pool.Exec(ctx, query,
		numeric(s.InvestableAssets), numeric(s.StandbyFundRatio), numeric(s.StandbyFund),
		string(s.DividendOption), nullNumeric(s.AdditionalRequiredAssets),
	)
	if err != nil {
		return fmt.Errorf("failed to save early retirement setting: %w", err)
	}
	s.ID = 1
	return nil
}
