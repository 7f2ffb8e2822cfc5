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
	ErrETFNotFound   = errors.New("etf not found")
	ErrUnknownMarket = errors.New("unknown market")
)

// marketTables names the tables backing one market's instruments
type marketTables struct {
	etf      string
	chart    string
	dividend string
	// domestic tables carry etf_tax_type, payment_date and taxable_amt
	domestic bool
}

var tablesByMarket = map[models.Market]marketTables{
	models.MarketDomestic: {etf: "domestic_etfs", chart: "domestic_etfs_daily_chart", dividend: "domestic_etfs_dividend", domestic: true},
	models.MarketUSA:      {etf: "usa_etfs", chart: "usa_etfs_daily_chart", dividend: "usa_etfs_dividend"},
}

func marketTablesFor(m models.Market) (marketTables, error) {
	t, ok := tablesByMarket[m]
	if !ok {
		return marketTables{}, fmt.Errorf("%w: %q", ErrUnknownMarket, m)
	}
	return t, nil
}

// ETFRepository handles database operations for domestic and USA ETFs
type ETFRepository struct {
	pool *pgxpool.Pool
}

// NewETFRepository creates a new ETFRepository
func NewETFRepository(pool *pgxpool.Pool) *ETFRepository {
	return &ETFRepository{pool: pool}
}

func etfSelect(t marketTables) string {
	taxType := "NULL::varchar"
	if t.domestic {
		taxType = "etf_tax_type"
	}
	return fmt.Sprintf(`SELECT id, ticker, name, etf_type, %s FROM %s`, taxType, t.etf)
}

func scanETFs(rows pgx.Rows) ([]models.ETF, error) {
	defer rows.Close()
	out := []models.ETF{}
	for rows.Next() {
		var e models.ETF
		if err := rows.Scan(&e.ID, &e.Ticker, &e.Name, &e.ETFType, &e.ETFTaxType); err != nil {
			return nil, fmt.Errorf("failed to scan etf: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns ETFs of one market, optionally filtered by etf_type
func (r *ETFRepository) List(ctx context.Context, m models.Market, etfType string, skip, limit int) ([]models.ETF, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, etfSelect(t)+` WHERE ($1 = '' OR etf_type = $1) ORDER BY id OFFSET $2 LIMIT $3`,
		etfType, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s etfs: %w", m, err)
	}
	return scanETFs(rows)
}

// ListByType returns every ETF of one market with the given etf_type; an empty type returns all
func (r *ETFRepository) ListByType(ctx context.Context, m models.Market, etfType string) ([]models.ETF, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, etfSelect(t)+` WHERE ($1 = '' OR etf_type = $1) ORDER BY id`, etfType)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s etfs by type: %w", m, err)
	}
	return scanETFs(rows)
}

// ListByTickers returns the ETFs whose tickers are in tickers. Unknown tickers are absent from the result.
func (r *ETFRepository) ListByTickers(ctx context.Context, m models.Market, tickers []string) ([]models.ETF, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return []models.ETF{}, nil
	}
	rows, err := r.pool.Query(ctx, etfSelect(t)+` WHERE ticker = ANY($1) ORDER BY id`, tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s etfs by tickers: %w", m, err)
	}
	return scanETFs(rows)
}

// GetByID retrieves an ETF by ID
func (r *ETFRepository) GetByID(ctx context.Context, m models.Market, id int64) (*models.ETF, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	e := &models.ETF{}
	err = r.pool.QueryRow(ctx, etfSelect(t)+` WHERE id = $1`, id).Scan(&e.ID, &e.Ticker, &e.Name, &e.ETFType, &e.ETFTaxType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrETFNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s etf: %w", m, err)
	}
	return e, nil
}

// GetByTicker retrieves an ETF by its ticker
func (r *ETFRepository) GetByTicker(ctx context.Context, m models.Market, ticker string) (*models.ETF, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return nil, err
	}
	e := &models.ETF{}
	err = r.pool.QueryRow(ctx, etfSelect(t)+` WHERE ticker = $1`, ticker).Scan(&e.ID, &e.Ticker, &e.Name, &e.ETFType, &e.ETFTaxType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrETFNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s etf by ticker: %w", m, err)
	}
	return e, nil
}

func etfInsert(t marketTables, onConflict string) string {
	if t.domestic {
		return fmt.Sprintf(`INSERT INTO %s (ticker, name, etf_type, etf_tax_type) VALUES ($1, $2, $3, $4) %s RETURNING id`, t.etf, onConflict)
	}
	return fmt.Sprintf(`INSERT INTO %s (ticker, name, etf_type) VALUES ($1, $2, $3) %s RETURNING id`, t.etf, onConflict)
}

func etfArgs(t marketTables, req *models.ETFRequest) []any {
	args := []any{req.Ticker, req.Name, req.ETFType}
	if t.domestic {
		args = append(args, req.ETFTaxType)
	}
	return args
}

// Create inserts an ETF; a taken ticker yields ErrDuplicateCode
func (r *ETFRepository) Create(ctx context.Context, m models.Market, req *models.ETFRequest) (int64, error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.pool.QueryRow(ctx, etfInsert(t, ""), etfArgs(t, req)...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s etf: %w", m, mapConstraintError(err))
	}
	return id, nil
}

// Update rewrites an ETF
func (r *ETFRepository) Update(ctx context.Context, m models.Market, id int64, req *models.ETFRequest) error {
	t, err := marketTablesFor(m)
	if err != nil {
		return err
	}
	set := `ticker = $1, name = $2, etf_type = $3`
	args := []any{req.Ticker, req.Name, req.ETFType, id}
	if t.domestic {
		set += `, etf_tax_type = $5`
		args = append(args, req.ETFTaxType)
	}
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET %s WHERE id = $4`, t.etf, set), args...)
	if err != nil {
		return fmt.Errorf("failed to update %s etf: %w", m, mapConstraintError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrETFNotFound
	}
	return nil
}

// Delete removes an ETF together with its chart and dividend rows
func (r *ETFRepository) Delete(ctx context.Context, m models.Market, id int64) error {
	t, err := marketTablesFor(m)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.etf), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s etf: %w", m, err)
	}
	if result.RowsAffected() == 0 {
		return ErrETFNotFound
	}
	return nil
}

// BulkCreate inserts ETFs using batch operations, skipping tickers that already exist.
// Returns the count of inserted and skipped ETFs, plus any errors.
func (r *ETFRepository) BulkCreate(ctx context.Context, m models.Market, etfs []models.ETFRequest) (inserted int, skipped int, errs []error) {
	t, err := marketTablesFor(m)
	if err != nil {
		return 0, 0, []error{err}
	}
	if len(etfs) == 0 {
		return 0, 0, nil
	}

	query := etfInsert(t, "ON CONFLICT (ticker) DO NOTHING")
	batch := &pgx.Batch{}
	for i := range etfs {
		batch.Queue(query, etfArgs(t, &etfs[i])...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i, e := range etfs {
		var id int64
		err := br.QueryRow().Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// ticker already present
				skipped++
				continue
			}
			errs = append(errs, fmt.Errorf("failed to insert etf %d (%s): %w", i, e.Ticker, err))
			continue
		}
		inserted++
	}
	return inserted, skipped, errs
}
