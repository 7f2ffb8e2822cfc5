package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fintrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInstitutionNotFound = errors.New("financial institution not found")

// InstitutionRepository handles database operations for financial institutions
type InstitutionRepository struct {
	pool *pgxpool.Pool
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(pool *pgxpool.Pool) *InstitutionRepository {
	return &InstitutionRepository{pool: pool}
}

// List returns institutions ordered by id
func (r *InstitutionRepository) List(ctx context.Context, skip, limit int) ([]models.FinancialInstitution, error) {
	query := `SELECT id, name, code FROM financial_institution ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial institutions: %w", err)
	}
	defer rows.Close()

	out := []models.FinancialInstitution{}
	for rows.Next() {
		var fi models.FinancialInstitution
		if err := rows.Scan(&fi.ID, &fi.Name, &fi.Code); err != nil {
			return nil, fmt.Errorf("failed to scan financial institution: %w", err)
		}
		out = append(out, fi)
	}
	return out, rows.Err()
}

// GetByID retrieves an institution by ID
func (r *InstitutionRepository) GetByID(ctx context.Context, id int64) (*models.FinancialInstitution, error) {
	query := `SELECT id, name, code FROM financial_institution WHERE id = $1`
	fi := &models.FinancialInstitution{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&fi.ID, &fi.Name, &fi.Code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInstitutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get financial institution: %w", err)
	}
	return fi, nil
}

// Create inserts an institution; a duplicate code yields ErrDuplicateCode
func (r *InstitutionRepository) Create(ctx context.Context, req *models.FinancialInstitutionRequest) (*models.FinancialInstitution, error) {
	query := `INSERT INTO financial_institution (name, code) VALUES ($1, $2) RETURNING id`
	fi := &models.FinancialInstitution{Name: req.Name, Code: req.Code}
	if err := r.pool.QueryRow(ctx, query, req.Name, req.Code).Scan(&fi.ID); err != nil {
		return nil, fmt.Errorf("failed to create financial institution: %w", mapConstraintError(err))
	}
	return fi, nil
}

// Update rewrites name and code. Changing the code of a referenced institution fails with ErrReferenced.
func (r *InstitutionRepository) Update(ctx context.Context, id int64, req *models.FinancialInstitutionRequest) (*models.FinancialInstitution, error) {
	query := `UPDATE financial_institution SET name = $1, code = $2 WHERE id = $3`
	result, err := r.pool.Exec(ctx, query, req.Name, req.Code, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update financial institution: %w", mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return nil, ErrInstitutionNotFound
	}
	return &models.FinancialInstitution{ID: id, Name: req.Name, Code: req.Code}, nil
}

// Delete removes an institution
func (r *InstitutionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM financial_institution WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete financial institution: %w", mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrInstitutionNotFound
	}
	return nil
}
