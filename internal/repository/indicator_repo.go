package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fintrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrIndicatorNotFound = errors.New("indicator not found")

// IndicatorRepository handles tracked USA market indicators
type IndicatorRepository struct {
	pool *pgxpool.Pool
}

// NewIndicatorRepository creates a new IndicatorRepository
func NewIndicatorRepository(pool *pgxpool.Pool) *IndicatorRepository {
	return &IndicatorRepository{pool: pool}
}

const indicatorSelect = `SELECT id, ticker, indicator_nm, order_no, weekly_macd_oscillator FROM usa_indicators`

func scanIndicators(rows pgx.Rows) ([]models.Indicator, error) {
	defer rows.Close()
	out := []models.Indicator{}
	for rows.Next() {
		var i models.Indicator
		if err := rows.Scan(&i.ID, &i.Ticker, &i.IndicatorName, &i.OrderNo, &i.WeeklyMACDOscillator); err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// List returns indicators in display order
func (r *IndicatorRepository) List(ctx context.Context, skip, limit int) ([]models.Indicator, error) {
	rows, err := r.pool.Query(ctx, indicatorSelect+` ORDER BY order_no, id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicators: %w", err)
	}
	return scanIndicators(rows)
}

// ListAll returns every indicator in display order
func (r *IndicatorRepository) ListAll(ctx context.Context) ([]models.Indicator, error) {
	rows, err := r.pool.Query(ctx, indicatorSelect+` ORDER BY order_no, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicators: %w", err)
	}
	return scanIndicators(rows)
}

// GetByID retrieves an indicator by ID
func (r *IndicatorRepository) GetByID(ctx context.Context, id int64) (*models.Indicator, error) {
	i := &models.Indicator{}
	err := r.pool.QueryRow(ctx, indicatorSelect+` WHERE id = $1`, id).
		Scan(&i.ID, &i.Ticker, &i.IndicatorName, &i.OrderNo, &i.WeeklyMACDOscillator)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIndicatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator: %w", err)
	}
	return i, nil
}

// Create inserts an indicator; ticker and indicator_nm must be set
func (r *IndicatorRepository) Create(ctx context.Context, req *models.IndicatorRequest) (int64, error) {
	orderNo := 0
	if req.OrderNo != nil {
		orderNo = *req.OrderNo
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO usa_indicators (ticker, indicator_nm, order_no, weekly_macd_oscillator)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.Ticker, req.IndicatorName, orderNo, nullNumeric(req.WeeklyMACDOscillator)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create indicator: %w", mapConstraintError(err))
	}
	return id, nil
}

// Update changes only the fields present in req
func (r *IndicatorRepository) Update(ctx context.Context, id int64, req *models.IndicatorRequest) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE usa_indicators
		SET ticker = COALESCE($1, ticker),
		    indicator_nm = COALESCE($2, indicator_nm),
		    order_no = COALESCE($3, order_no),
		    weekly_macd_oscillator = COALESCE($4::numeric, weekly_macd_oscillator)
		WHERE id = $5
	`, req.Ticker, req.IndicatorName, req.OrderNo, nullNumeric(req.WeeklyMACDOscillator), id)
	if err != nil {
		return fmt.Errorf("failed to update indicator: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIndicatorNotFound
	}
	return nil
}

// SetMACD stores a freshly computed weekly MACD oscillator
func (r *IndicatorRepository) SetMACD(ctx context.Context, id int64, value decimal.Decimal) error {
	result, err := r.pool.Exec(ctx, `UPDATE usa_indicators SET weekly_macd_oscillator = $1 WHERE id = $2`,
		numeric(value.Round(4)), id)
	if err != nil {
		return fmt.Errorf("failed to store macd for indicator %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrIndicatorNotFound
	}
	return nil
}

// Delete removes an indicator
func (r *IndicatorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM usa_indicators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete indicator: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIndicatorNotFound
	}
	return nil
}
