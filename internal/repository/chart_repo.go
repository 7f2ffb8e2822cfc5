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
	"github.com/shopspring/decimal"
)

var ErrBarNotFound = errors.New("daily bar not found")

// SeriesKey is the natural key of a per-ETF time series row
type SeriesKey struct {
	ETFID int64
	Date  string // YYYY-MM-DD
}

// ChartRepository handles daily OHLCV bars for domestic and USA ETFs
type ChartRepository struct {
	pool *pgxpool.Pool
}

// NewChartRepository creates a new ChartRepository
func NewChartRepository(pool *pgxpool.Pool) *ChartRepository {
	return &ChartRepository{pool: pool}
}

func barSelect(t marketTables) string {
	return fmt.Sprintf(`SELECT id, etf_id, date, open, high, low, close, volume FROM %s`, t.chart)
}

func scanBars(rows pgx.Rows) ([]models.DailyBar, error) {
	defer rows.Close()
	out := []models.DailyBar{}
	for rows.Next() {
		var b models.DailyBar
		if err := rows.Scan(&b.ID, &b.ETFID, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily bar: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *ChartRepository) one(ctx context.Context, query string, args ...any) (*models.DailyBar, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily bar: %w", err)
	}
	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrBarNotFound
	}
	return &bars[0], nil
}

// ListByETF returns an ETF's bars, newest first
func (r *ChartRepository) ListByETF(ctx context.Context, m models.Market, etfID int64, skip, limit int) ([]models.DailyBar, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, barSelect(t)+` WHERE etf_id = $1 ORDER BY date DESC OFFSET $2 LIMIT $3`, etfID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s bars: %w", m, err)
	}
	return scanBars(rows)
}

// ListSince returns an ETF's bars dated on or after from, oldest first
func (r *ChartRepository) ListSince(ctx context.Context, m models.Market, etfID int64, from time.Time) ([]models.DailyBar, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, barSelect(t)+` WHERE etf_id = $1 AND date >= $2 ORDER BY date ASC`, etfID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s bars since %s: %w", m, from.Format("2006-01-02"), err)
	}
	return scanBars(rows)
}

// Latest returns the most recent bar of an ETF
func (r *ChartRepository) Latest(ctx context.Context, m models.Market, etfID int64) (*models.DailyBar, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	return r.one(ctx, barSelect(t)+` WHERE etf_id = $1 ORDER BY date DESC LIMIT 1`, etfID)
}

// GetByDate returns the bar of an ETF for one date
func (r *ChartRepository) GetByDate(ctx context.Context, m models.Market, etfID int64, date models.Date) (*models.DailyBar, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	return r.one(ctx, barSelect(t)+` WHERE etf_id = $1 AND date = $2`, etfID, date.Time)
}

// GetByID retrieves a bar by ID
func (r *ChartRepository) GetByID(ctx context.Context, m models.Market, id int64) (*models.DailyBar, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	return r.one(ctx, barSelect(t)+` WHERE id = $1`, id)
}

// Create inserts one bar; an existing (etf_id, date) yields ErrDuplicateCode
func (r *ChartRepository) Create(ctx context.Context, m models.Market, b *models.DailyBar) (int64, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (etf_id, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, t.chart)
	args := append([]any{b.ETFID, b.Date.Time}, barValues(t, b)...)
	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s bar: %w", m, mapConstraintError(err))
	}
	return id, nil
}

// Update rewrites the values of a bar; etf_id and date are kept
func (r *ChartRepository) Update(ctx context.Context, m models.Market, id int64, b *models.DailyBar) error {
	t, err := marketTablesFor(m)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, barUpdate(t), append(barValues(t, b), id)...)
	if err != nil {
		return fmt.Errorf("failed to update %s bar: %w", m, err)
	}
	if result.RowsAffected() == 0 {
		return ErrBarNotFound
	}
	return nil
}

// Delete removes a bar
func (r *ChartRepository) Delete(ctx context.Context, m models.Market, id int64) error {
	t, err := marketTablesFor(m)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.chart), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s bar: %w", m, err)
	}
	if result.RowsAffected() == 0 {
		return ErrBarNotFound
	}
	return nil
}

// barValues renders open, high, low, close and volume. Domestic columns are whole won.
func barValues(t marketTables, b *models.DailyBar) []any {
	price := func(d decimal.Decimal) any { return numeric(d) }
	if t.domestic {
		price = func(d decimal.Decimal) any { return d.IntPart() }
	}
	return []any{price(b.Open), price(b.High), price(b.Low), price(b.Close), b.Volume}
}

func barUpdate(t marketTables) string {
	return fmt.Sprintf(`UPDATE %s SET open = $1, high = $2, low = $3, close = $4, volume = $5 WHERE id = $6`, t.chart)
}

// BarTable binds daily bars to one market's chart table for merging
type BarTable struct {
	t marketTables
}

// Table returns the merge binding for m
func (r *ChartRepository) Table(m models.Market) (*BarTable, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	return &BarTable{t: t}, nil
}

func (b *BarTable) Name() string { return b.t.chart }

func (b *BarTable) Key(rec models.DailyBar) (SeriesKey, bool) {
	if rec.ETFID == 0 || rec.Date.IsZero() {
		return SeriesKey{}, false
	}
	return SeriesKey{ETFID: rec.ETFID, Date: rec.Date.String()}, true
}

func (b *BarTable) Find(ctx context.Context, tx pgx.Tx, key SeriesKey) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE etf_id = $1 AND date = $2::date LIMIT 2`, b.t.chart)
	return upsert.FindOne(ctx, tx, query, key.ETFID, key.Date)
}

func (b *BarTable) Insert(ctx context.Context, tx pgx.Tx, rec models.DailyBar) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (etf_id, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.t.chart)
	_, err := tx.Exec(ctx, query, append([]any{rec.ETFID, rec.Date.Time}, barValues(b.t, &rec)...)...)
	return err
}

func (b *BarTable) Update(ctx context.Context, tx pgx.Tx, id int64, rec models.DailyBar) error {
	_, err := tx.Exec(ctx, barUpdate(b.t), append(barValues(b.t, &rec), id)...)
	return err
}
