package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/upsert"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrETFDividendNotFound = errors.New("etf dividend not found")

// ETFDividendRepository handles distribution history for domestic and USA ETFs
type ETFDividendRepository struct {
	pool *pgxpool.Pool
}

// NewETFDividendRepository creates a new ETFDividendRepository
func NewETFDividendRepository(pool *pgxpool.Pool) *ETFDividendRepository {
	return &ETFDividendRepository{pool: pool}
}

func etfDividendSelect(t marketTables) string {
	if t.domestic {
		return fmt.Sprintf(`SELECT id, etf_id, record_date, payment_date, dividend_amt, taxable_amt FROM %s`, t.dividend)
	}
	return fmt.Sprintf(`SELECT id, etf_id, record_date, NULL::date, dividend_amt, NULL::numeric FROM %s`, t.dividend)
}

func scanETFDividends(rows pgx.Rows) ([]models.ETFDividend, error) {
	defer rows.Close()
	out := []models.ETFDividend{}
	for rows.Next() {
		var d models.ETFDividend
		if err := rows.Scan(&d.ID, &d.ETFID, &d.RecordDate, &d.PaymentDate, &d.DividendAmount, &d.TaxableAmount); err != nil {
			return nil, fmt.Errorf("failed to scan etf dividend: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByETF returns an ETF's distributions, newest record date first
func (r *ETFDividendRepository) ListByETF(ctx context.Context, m models.Market, etfID int64, skip, limit int) ([]models.ETFDividend, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, etfDividendSelect(t)+` WHERE etf_id = $1 ORDER BY record_date DESC OFFSET $2 LIMIT $3`,
		etfID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s dividends: %w", m, err)
	}
	return scanETFDividends(rows)
}

// ListSince returns distributions recorded on or after from, oldest first
func (r *ETFDividendRepository) ListSince(ctx context.Context, m models.Market, etfID int64, from time.Time) ([]models.ETFDividend, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, etfDividendSelect(t)+` WHERE etf_id = $1 AND record_date >= $2 ORDER BY record_date ASC`,
		etfID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s dividends since %s: %w", m, from.Format("2006-01-02"), err)
	}
	return scanETFDividends(rows)
}

// GetByID retrieves a distribution by ID
func (r *ETFDividendRepository) GetByID(ctx context.Context, m models.Market, id int64) (*models.ETFDividend, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, etfDividendSelect(t)+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s dividend: %w", m, err)
	}
	list, err := scanETFDividends(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrETFDividendNotFound
	}
	return &list[0], nil
}

// Create inserts a distribution; an existing (etf_id, record_date) yields ErrDuplicateCode
func (r *ETFDividendRepository) Create(ctx context.Context, m models.Market, d *models.ETFDividend) (int64, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.pool.QueryRow(ctx, dividendInsert(t)+` RETURNING id`, dividendInsertArgs(t, d)...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s dividend: %w", m, mapConstraintError(err))
	}
	return id, nil
}

// Update rewrites the values of a distribution; etf_id and record_date are kept
func (r *ETFDividendRepository) Update(ctx context.Context, m models.Market, id int64, d *models.ETFDividend) error {
	t, err := marketTablesFor(m)
	if err != nil {
		return err
	}
	query, args := dividendUpdate(t, id, d)
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s dividend: %w", m, err)
	}
	if result.RowsAffected() == 0 {
		return ErrETFDividendNotFound
	}
	return nil
}

// Delete removes a distribution
func (r *ETFDividendRepository) Delete(ctx context.Context, m models.Market, id int64) error {
	t, err := marketTablesFor(m)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.dividend), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s dividend: %w", m, err)
	}
	if result.RowsAffected() == 0 {
		return ErrETFDividendNotFound
	}
	return nil
}

func dividendInsert(t marketTables) string {
	if t.domestic {
		return fmt.Sprintf(`INSERT INTO %s (etf_id, record_date, payment_date, dividend_amt, taxable_amt) VALUES ($1, $2, $3, $4, $5)`, t.dividend)
	}
	return fmt.Sprintf(`INSERT INTO %s (etf_id, record_date, dividend_amt) VALUES ($1, $2, $3)`, t.dividend)
}

// dividendInsertArgs renders a distribution. Domestic amounts are whole won.
func dividendInsertArgs(t marketTables, d *models.ETFDividend) []any {
	if t.domestic {
		var taxable int64
		if d.TaxableAmount != nil {
			taxable = d.TaxableAmount.IntPart()
		}
		return []any{d.ETFID, d.RecordDate.Time, dateArg(d.PaymentDate), d.DividendAmount.IntPart(), taxable}
	}
	return []any{d.ETFID, d.RecordDate.Time, numeric(d.DividendAmount)}
}

func dividendUpdate(t marketTables, id int64, d *models.ETFDividend) (string, []any) {
	if t.domestic {
		var taxable int64
		if d.TaxableAmount != nil {
			taxable = d.TaxableAmount.IntPart()
		}
		return fmt.Sprintf(`UPDATE %s SET payment_date = $1, dividend_amt = $2, taxable_amt = $3 WHERE id = $4`, t.dividend),
			[]any{dateArg(d.PaymentDate), d.DividendAmount.IntPart(), taxable, id}
	}
	return fmt.Sprintf(`UPDATE %s SET dividend_amt = $1 WHERE id = $2`, t.dividend),
		[]any{numeric(d.DividendAmount), id}
}

// DividendTable binds distributions to one market's dividend table for merging.
// Domestic rows require a payment date.
type DividendTable struct {
	t marketTables
}

// Table returns the merge binding for m
func (r *ETFDividendRepository) Table(m models.Market) (*DividendTable, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	return &DividendTable{t: t}, nil
}

func (d *DividendTable) Name() string { return d.t.dividend }

func (d *DividendTable) Key(rec models.ETFDividend) (SeriesKey, bool) {
	if rec.ETFID == 0 || rec.RecordDate.IsZero() {
		return SeriesKey{}, false
	}
	if d.t.domestic && (rec.PaymentDate == nil || rec.PaymentDate.IsZero()) {
		return SeriesKey{}, false
	}
	return SeriesKey{ETFID: rec.ETFID, Date: rec.RecordDate.String()}, true
}

func (d *DividendTable) Find(ctx context.Context, tx pgx.Tx, key SeriesKey) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE etf_id = $1 AND record_date = $2::date LIMIT 2`, d.t.dividend)
	return upsert.FindOne(ctx, tx, query, key.ETFID, key.Date)
}

func (d *DividendTable) Insert(ctx context.Context, tx pgx.Tx, rec models.ETFDividend) error {
	_, err := tx.Exec(ctx, dividendInsert(d.t), dividendInsertArgs(d.t, &rec)...)
	return err
}

func (d *DividendTable) Update(ctx context.Context, tx pgx.Tx, id int64, rec models.ETFDividend) error {
	query, args := dividendUpdate(d.t, id, &rec)
	_, err := tx.Exec(ctx, query, args...)
	return err
}
