package repository

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fintrack/internal/database"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/upsert"
)

// openTestDB connects to PG_URL and applies the schema, skipping when no database is configured.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		t.Skip("PG_URL not set")
	}
	ctx := context.Background()
	db, err := database.New(ctx, pgURL)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	// second run must be a no-op
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func TestRateTable_MergeAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	day := models.NewDate(1901, 1, 2)

	cleanup := func() {
		_, err := db.Pool.Exec(ctx, `DELETE FROM usd_krw_exchange WHERE date = $1`, day.Time)
		require.NoError(t, err)
	}
	cleanup()
	t.Cleanup(cleanup)

	var table upsert.Table[string, models.ExchangeRate] = RateTable{}
	res, err := upsert.Merge(ctx, db.Pool, table, []models.ExchangeRate{
		{Date: day, ExchangeRate: decimal.RequireFromString("1000.10")},
		{Date: day, ExchangeRate: decimal.RequireFromString("1001.20")},
		{ExchangeRate: decimal.RequireFromString("5")},
	})
	require.NoError(t, err)
	assert.Equal(t, upsert.Result{Created: 1, Updated: 1, Skipped: 1}, res)

	repo := NewExchangeRepository(db.Pool)
	got, err := repo.GetByDate(ctx, day)
	require.NoError(t, err)
	assert.True(t, got.ExchangeRate.Equal(decimal.RequireFromString("1001.20")), "rate = %s", got.ExchangeRate)

	res, err = upsert.Merge(ctx, db.Pool, table, []models.ExchangeRate{
		{Date: day, ExchangeRate: decimal.RequireFromString("1001.20")},
	})
	require.NoError(t, err)
	assert.Equal(t, upsert.Result{Updated: 1}, res)
}
