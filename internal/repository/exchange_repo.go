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

var ErrRateNotFound = errors.New("exchange rate not found")

// ExchangeRepository handles the USD/KRW daily exchange-rate series
type ExchangeRepository struct {
	pool *pgxpool.Pool
}

// NewExchangeRepository creates a new ExchangeRepository
func NewExchangeRepository(pool *pgxpool.Pool) *ExchangeRepository {
	return &ExchangeRepository{pool: pool}
}

const rateSelect = `SELECT id, date, exchange_rate FROM usd_krw_exchange`

func (r *ExchangeRepository) one(ctx context.Context, query string, args ...any) (*models.ExchangeRate, error) {
	e := &models.ExchangeRate{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.Date, &e.ExchangeRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return e, nil
}

// List returns rates, newest first
func (r *ExchangeRepository) List(ctx context.Context, skip, limit int) ([]models.ExchangeRate, error) {
	rows, err := r.pool.Query(ctx, rateSelect+` ORDER BY date DESC OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	defer rows.Close()

	out := []models.ExchangeRate{}
	for rows.Next() {
		var e models.ExchangeRate
		if err := rows.Scan(&e.ID, &e.Date, &e.ExchangeRate); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID retrieves a rate by ID
func (r *ExchangeRepository) GetByID(ctx context.Context, id int64) (*models.ExchangeRate, error) {
	return r.one(ctx, rateSelect+` WHERE id = $1`, id)
}

// GetByDate returns the rate quoted for exactly date
func (r *ExchangeRepository) GetByDate(ctx context.Context, date models.Date) (*models.ExchangeRate, error) {
	return r.one(ctx, rateSelect+` WHERE date = $1`, date.Time)
}

// GetNearest returns the latest rate dated on or before date, covering weekends and holidays
func (r *ExchangeRepository) GetNearest(ctx context.Context, date models.Date) (*models.ExchangeRate, error) {
	return r.one(ctx, rateSelect+` WHERE date <= $1 ORDER BY date DESC LIMIT 1`, date.Time)
}

// Create inserts a rate; an existing date yields ErrDuplicateCode
func (r *ExchangeRepository) Create(ctx context.Context, e *models.ExchangeRate) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO usd_krw_exchange (date, exchange_rate) VALUES ($1, $2) RETURNING id`,
		e.Date.Time, numeric(e.ExchangeRate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create exchange rate: %w", mapConstraintError(err))
	}
	return id, nil
}

// Update changes the rate value; the date is kept
func (r *ExchangeRepository) Update(ctx context.Context, id int64, e *models.ExchangeRate) error {
	result, err := r.pool.Exec(ctx, `UPDATE usd_krw_exchange SET exchange_rate = $1 WHERE id = $2`, numeric(e.ExchangeRate), id)
	if err != nil {
		return fmt.Errorf("failed to update exchange rate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRateNotFound
	}
	return nil
}

// Delete removes a rate
func (r *ExchangeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM usd_krw_exchange WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exchange rate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRateNotFound
	}
	return nil
}

// RateTable binds the exchange-rate series for merging. The series has one subject, so the date alone is the key.
type RateTable struct{}

func (RateTable) Name() string { return "usd_krw_exchange" }

func (RateTable) Key(rec models.ExchangeRate) (string, bool) {
	if rec.Date.IsZero() {
		return "", false
	}
	return rec.Date.String(), true
}

func (RateTable) Find(ctx context.Context, tx pgx.Tx, date string) (int64, bool, error) {
	return upsert.FindOne(ctx, tx, `SELECT id FROM usd_krw_exchange WHERE date = $1::date LIMIT 2`, date)
}

func (RateTable) Insert(ctx context.Context, tx pgx.Tx, rec models.ExchangeRate) error {
	_, err := tx.Exec(ctx, `INSERT INTO usd_krw_exchange (date, exchange_rate) VALUES ($1, $2)`,
		rec.Date.Time, numeric(rec.ExchangeRate))
	return err
}

func (RateTable) Update(ctx context.Context, tx pgx.Tx, id int64, rec models.ExchangeRate) error {
	_, err := tx.Exec(ctx, `UPDATE usd_krw_exchange SET exchange_rate = $1 WHERE id = $2`, numeric(rec.ExchangeRate), id)
	return err
}
