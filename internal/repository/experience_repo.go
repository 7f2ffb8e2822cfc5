package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fintrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrExperienceStockNotFound = errors.New("experience lab stock not found")

// ExperienceRepository handles the experience-lab ticker lists
type ExperienceRepository struct {
	pool *pgxpool.Pool
}

// NewExperienceRepository creates a new ExperienceRepository
func NewExperienceRepository(pool *pgxpool.Pool) *ExperienceRepository {
	return &ExperienceRepository{pool: pool}
}

// List returns entries, filtered by service code when it is non-empty
func (r *ExperienceRepository) List(ctx context.Context, serviceCode string, skip, limit int) ([]models.ExperienceLabStock, error) {
	query := `
		SELECT id, experience_service_code, ticker
		FROM experience_lab_stock
		WHERE ($1 = '' OR experience_service_code = $1)
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, serviceCode, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query experience lab stocks: %w", err)
	}
	defer rows.Close()

	out := []models.ExperienceLabStock{}
	for rows.Next() {
		var s models.ExperienceLabStock
		if err := rows.Scan(&s.ID, &s.ExperienceServiceCode, &s.Ticker); err != nil {
			return nil, fmt.Errorf("failed to scan experience lab stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get retrieves an entry by ID
func (r *ExperienceRepository) Get(ctx context.Context, id int64) (*models.ExperienceLabStock, error) {
	s := &models.ExperienceLabStock{}
	err := r.pool.QueryRow(ctx, `SELECT id, experience_service_code, ticker FROM experience_lab_stock WHERE id = $1`, id).
		Scan(&s.ID, &s.ExperienceServiceCode, &s.Ticker)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExperienceStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experience lab stock: %w", err)
	}
	return s, nil
}

// Create inserts an entry
func (r *ExperienceRepository) Create(ctx context.Context, req *models.ExperienceLabStockRequest) (*models.ExperienceLabStock, error) {
	s := &models.ExperienceLabStock{ExperienceServiceCode: req.ExperienceServiceCode, Ticker: req.Ticker}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO experience_lab_stock (experience_service_code, ticker) VALUES ($1, $2) RETURNING id`,
		req.ExperienceServiceCode, req.Ticker,
	).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create experience lab stock: %w", err)
	}
	return s, nil
}

// Update rewrites an entry
func (r *ExperienceRepository) Update(ctx context.Context, id int64, req *models.ExperienceLabStockRequest) (*models.ExperienceLabStock, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE experience_lab_stock SET experience_service_code = $1, ticker = $2 WHERE id = $3`,
		req.ExperienceServiceCode, req.Ticker, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update experience lab stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrExperienceStockNotFound
	}
	return &models.ExperienceLabStock{ID: id, ExperienceServiceCode: req.ExperienceServiceCode, Ticker: req.Ticker}, nil
}

// Delete removes an entry
func (r *ExperienceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM experience_lab_stock WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete experience lab stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrExperienceStockNotFound
	}
	return nil
}
