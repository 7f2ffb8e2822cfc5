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
	ErrCodeMasterNotFound = errors.New("common code master not found")
	ErrCodeDetailNotFound = errors.New("common code detail not found")
)

// CodeRepository handles common code groups and their entries
type CodeRepository struct {
	pool *pgxpool.Pool
}

// NewCodeRepository creates a new CodeRepository
func NewCodeRepository(pool *pgxpool.Pool) *CodeRepository {
	return &CodeRepository{pool: pool}
}

// ListMasters returns code groups ordered by id
func (r *CodeRepository) ListMasters(ctx context.Context, skip, limit int) ([]models.CodeMaster, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, code_name, remark FROM common_code_master ORDER BY id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query code masters: %w", err)
	}
	defer rows.Close()

	out := []models.CodeMaster{}
	for rows.Next() {
		var m models.CodeMaster
		if err := rows.Scan(&m.ID, &m.Code, &m.CodeName, &m.Remark); err != nil {
			return nil, fmt.Errorf("failed to scan code master: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMaster retrieves a code group by ID
func (r *CodeRepository) GetMaster(ctx context.Context, id int64) (*models.CodeMaster, error) {
	m := &models.CodeMaster{}
	err := r.pool.QueryRow(ctx, `SELECT id, code, code_name, remark FROM common_code_master WHERE id = $1`, id).
		Scan(&m.ID, &m.Code, &m.CodeName, &m.Remark)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCodeMasterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get code master: %w", err)
	}
	return m, nil
}

// CreateMaster inserts a code group; a duplicate code yields ErrDuplicateCode
func (r *CodeRepository) CreateMaster(ctx context.Context, req *models.CodeMasterRequest) (*models.CodeMaster, error) {
	m := &models.CodeMaster{Code: req.Code, CodeName: req.CodeName, Remark: req.Remark}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO common_code_master (code, code_name, remark) VALUES ($1, $2, $3) RETURNING id`,
		req.Code, req.CodeName, req.Remark,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create code master: %w", mapConstraintError(err))
	}
	return m, nil
}

// UpdateMaster rewrites a code group
func (r *CodeRepository) UpdateMaster(ctx context.Context, id int64, req *models.CodeMasterRequest) (*models.CodeMaster, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE common_code_master SET code = $1, code_name = $2, remark = $3 WHERE id = $4`,
		req.Code, req.CodeName, req.Remark, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update code master: %w", mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return nil, ErrCodeMasterNotFound
	}
	return &models.CodeMaster{ID: id, Code: req.Code, CodeName: req.CodeName, Remark: req.Remark}, nil
}

// DeleteMaster removes a code group and, by cascade, its entries
func (r *CodeRepository) DeleteMaster(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM common_code_master WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete code master: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCodeMasterNotFound
	}
	return nil
}

// ListDetails returns code entries, filtered by masterID when it is non-zero
func (r *CodeRepository) ListDetails(ctx context.Context, masterID int64, skip, limit int) ([]models.CodeDetail, error) {
	query := `
		SELECT id, master_id, detail_code, detail_code_name
		FROM common_code_detail
		WHERE ($1::bigint = 0 OR master_id = $1)
		ORDER BY master_id, id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, masterID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query code details: %w", err)
	}
	defer rows.Close()

	out := []models.CodeDetail{}
	for rows.Next() {
		var d models.CodeDetail
		if err := rows.Scan(&d.ID, &d.MasterID, &d.DetailCode, &d.DetailCodeName); err != nil {
			return nil, fmt.Errorf("failed to scan code detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DetailCodes returns detail_code -> detail_code_name for the group with the given master code
func (r *CodeRepository) DetailCodes(ctx context.Context, masterCode string) (map[string]string, error) {
	query := `
		SELECT d.detail_code, d.detail_code_name
		FROM common_code_detail d
		JOIN common_code_master m ON m.id = d.master_id
		WHERE m.code = $1
	`
	rows, err := r.pool.Query(ctx, query, masterCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query codes for %s: %w", masterCode, err)
	}
	defer rows.Close()

	codes := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes[code] = name
	}
	return codes, rows.Err()
}

// GetDetail retrieves a code entry by ID
func (r *CodeRepository) GetDetail(ctx context.Context, id int64) (*models.CodeDetail, error) {
	d := &models.CodeDetail{}
	err := r.pool.QueryRow(ctx, `SELECT id, master_id, detail_code, detail_code_name FROM common_code_detail WHERE id = $1`, id).
		Scan(&d.ID, &d.MasterID, &d.DetailCode, &d.DetailCodeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCodeDetailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get code detail: %w", err)
	}
	return d, nil
}

// CreateDetail inserts a code entry. An unknown master yields ErrReferenced.
func (r *CodeRepository) CreateDetail(ctx context.Context, req *models.CodeDetailRequest) (*models.CodeDetail, error) {
	d := &models.CodeDetail{MasterID: req.MasterID, DetailCode: req.DetailCode, DetailCodeName: req.DetailCodeName}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO common_code_detail (master_id, detail_code, detail_code_name) VALUES ($1, $2, $3) RETURNING id`,
		req.MasterID, req.DetailCode, req.DetailCodeName,
	).Scan(&d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create code detail: %w", mapConstraintError(err))
	}
	return d, nil
}

// UpdateDetail rewrites a code entry
func (r *CodeRepository) UpdateDetail(ctx context.Context, id int64, req *models.CodeDetailRequest) (*models.CodeDetail, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE common_code_detail SET master_id = $1, detail_code = $2, detail_code_name = $3 WHERE id = $4`,
		req.MasterID, req.DetailCode, req.DetailCodeName, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update code detail: %w", mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return nil, ErrCodeDetailNotFound
	}
	return &models.CodeDetail{ID: id, MasterID: req.MasterID, DetailCode: req.DetailCode, DetailCodeName: req.DetailCodeName}, nil
}

// DeleteDetail removes a code entry
func (r *CodeRepository) DeleteDetail(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM common_code_detail WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete code detail: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCodeDetailNotFound
	}
	return nil
}
