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
	ErrAccountNotFound = errors.New("account not found")
	ErrUnknownKind     = errors.New("unknown account kind")
)

// accountTables names the tables backing one account kind
type accountTables struct {
	account string
	detail  string
	// nonTax is true when the account table carries non_tax_type
	nonTax bool
}

var tablesByKind = map[models.AccountKind]accountTables{
	models.AccountKindISA:     {account: "isa_account", detail: "isa_account_detail", nonTax: true},
	models.AccountKindIRP:     {account: "irp_account", detail: "irp_account_detail"},
	models.AccountKindPension: {account: "pension_fund_account", detail: "pension_fund_account_detail"},
}

func tablesFor(kind models.AccountKind) (accountTables, error) {
	t, ok := tablesByKind[kind]
	if !ok {
		return accountTables{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return t, nil
}

// AccountRepository handles database operations for ISA, IRP and pension-fund accounts
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func accountSelect(t accountTables) string {
	nonTax := "NULL::varchar"
	if t.nonTax {
		nonTax = "a.non_tax_type"
	}
	return fmt.Sprintf(`
		SELECT a.id, a.financial_institution_code, fi.name, a.account_number, a.registration_date,
		       a.cash_balance, a.account_status_code, %s
		FROM %s a
		LEFT JOIN financial_institution fi ON fi.code = a.financial_institution_code
	`, nonTax, t.account)
}

func scanAccount(row pgx.Row, kind models.AccountKind) (*models.Account, error) {
	a := &models.Account{Kind: kind}
	err := row.Scan(
		&a.ID, &a.FinancialInstitutionCode, &a.FinancialInstitutionName, &a.AccountNumber,
		&a.RegistrationDate, &a.CashBalance, &a.AccountStatusCode, &a.NonTaxType,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns accounts of one kind with their institution names
func (r *AccountRepository) List(ctx context.Context, kind models.AccountKind, skip, limit int) ([]models.Account, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, accountSelect(t)+` ORDER BY a.id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s accounts: %w", kind, err)
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s account: %w", kind, err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	a, err := scanAccount(r.pool.QueryRow(ctx, accountSelect(t)+` WHERE a.id = $1`, id), kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s account: %w", kind, err)
	}
	return a, nil
}

// Exists reports whether an account of the given kind exists
func (r *AccountRepository) Exists(ctx context.Context, kind models.AccountKind, id int64) (bool, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, t.account)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s account: %w", kind, err)
	}
	return exists, nil
}

// Create inserts an account. An unknown institution code yields ErrReferenced.
func (r *AccountRepository) Create(ctx context.Context, tx pgx.Tx, kind models.AccountKind, req *models.AccountRequest) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}

	args := []any{req.FinancialInstitutionCode, req.AccountNumber, dateArg(req.RegistrationDate), numeric(req.CashBalance), req.AccountStatusCode}
	query := fmt.Sprintf(`
		INSERT INTO %s (financial_institution_code, account_number, registration_date, cash_balance, account_status_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.account)
	if t.nonTax {
		query = fmt.Sprintf(`
			INSERT INTO %s (financial_institution_code, account_number, registration_date, cash_balance, account_status_code, non_tax_type)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, t.account)
		args = append(args, req.NonTaxType)
	}

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s account: %w", kind, mapConstraintError(err))
	}
	return id, nil
}

// Update rewrites every column of an account
func (r *AccountRepository) Update(ctx context.Context, tx pgx.Tx, kind models.AccountKind, id int64, req *models.AccountRequest) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	args := []any{req.FinancialInstitutionCode, req.AccountNumber, dateArg(req.RegistrationDate), numeric(req.CashBalance), req.AccountStatusCode, id}
	set := `financial_institution_code = $1, account_number = $2, registration_date = $3, cash_balance = $4, account_status_code = $5`
	if t.nonTax {
		set += `, non_tax_type = $7`
		args = append(args, req.NonTaxType)
	}

	result, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET %s WHERE id = $6`, t.account, set), args...)
	if err != nil {
		return fmt.Errorf("failed to update %s account: %w", kind, mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Delete removes an account; its holdings, sales and dividends go with it by cascade
func (r *AccountRepository) Delete(ctx context.Context, tx pgx.Tx, kind models.AccountKind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	result, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.account), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s account: %w", kind, err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// BeginTx starts a new transaction
func (r *AccountRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}
