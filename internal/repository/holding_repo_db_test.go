package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fintrack/internal/database"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/upsert"
)

// seedIRPHolding creates an institution, an IRP account and one 069500 line carrying saleFee.
// All of it is removed when the test ends.
func seedIRPHolding(t *testing.T, db *database.DB, fiCode string, saleFee int64) (accountID, holdingID int64) {
	t.Helper()
	ctx := context.Background()
	cleanup := func() {
		_, err := db.Pool.Exec(ctx, `DELETE FROM irp_account WHERE financial_institution_code = $1`, fiCode)
		require.NoError(t, err)
		_, err = db.Pool.Exec(ctx, `DELETE FROM financial_institution WHERE code = $1`, fiCode)
		require.NoError(t, err)
	}
	cleanup()
	t.Cleanup(cleanup)

	_, err := db.Pool.Exec(ctx, `INSERT INTO financial_institution (name, code) VALUES ('Test Bank', $1)`, fiCode)
	require.NoError(t, err)
	require.NoError(t, db.Pool.QueryRow(ctx, `
		INSERT INTO irp_account (financial_institution_code, account_number, account_status_code)
		VALUES ($1, '000-00-000', 'ACTIVE') RETURNING id`, fiCode).Scan(&accountID))
	require.NoError(t, db.Pool.QueryRow(ctx, `
		INSERT INTO irp_account_detail (account_id, stock_code, quantity, purchase_avg_price, current_price, purchase_fee, sale_fee)
		VALUES ($1, '069500', 10, 100, 110, 5, $2) RETURNING id`, accountID, saleFee).Scan(&holdingID))
	return accountID, holdingID
}

func TestHoldingTable_MergeAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	accountID, holdingID := seedIRPHolding(t, db, "TEST-HOLDING-MERGE", 123)

	repo := NewHoldingRepository(db.Pool)
	bound, err := repo.Table(models.AccountKindIRP)
	require.NoError(t, err)
	var table upsert.Table[HoldingKey, models.HoldingRequest] = bound

	// the same code twice: both rows update the seeded line and the last one wins
	res, err := upsert.Merge(ctx, db.Pool, table, []models.HoldingRequest{
		{AccountID: accountID, StockCode: "069500", Quantity: decimal.NewFromInt(20),
			PurchaseAvgPrice: decimal.NewFromInt(150), CurrentPrice: decimal.NewFromInt(160), PurchaseFee: decimal.NewFromInt(6)},
		{AccountID: accountID, StockCode: "069500", Quantity: decimal.NewFromInt(30),
			PurchaseAvgPrice: decimal.NewFromInt(200), CurrentPrice: decimal.NewFromInt(210), PurchaseFee: decimal.NewFromInt(7)},
	})
	require.NoError(t, err)
	assert.Equal(t, upsert.Result{Created: 0, Updated: 2}, res)

	got, err := repo.GetByID(ctx, models.AccountKindIRP, holdingID)
	require.NoError(t, err)
	assert.Equal(t, accountID, got.AccountID)
	assert.Equal(t, "069500", got.StockCode)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(30)), "quantity = %s", got.Quantity)
	assert.True(t, got.PurchaseAvgPrice.Equal(decimal.NewFromInt(200)), "purchase_avg_price = %s", got.PurchaseAvgPrice)
	assert.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(210)), "current_price = %s", got.CurrentPrice)
	assert.True(t, got.PurchaseFee.Equal(decimal.NewFromInt(7)), "purchase_fee = %s", got.PurchaseFee)
	assert.True(t, got.SaleFee.Equal(decimal.NewFromInt(123)), "sale_fee = %s", got.SaleFee)

	// a new code is inserted with a zero sale fee
	res, err = upsert.Merge(ctx, db.Pool, table, []models.HoldingRequest{
		{AccountID: accountID, StockCode: "360750", Quantity: decimal.NewFromInt(5),
			PurchaseAvgPrice: decimal.NewFromInt(17000), CurrentPrice: decimal.NewFromInt(18000),
			SaleFee: decimal.NewFromInt(999)},
	})
	require.NoError(t, err)
	assert.Equal(t, upsert.Result{Created: 1}, res)

	lines, err := repo.ListByAccount(ctx, models.AccountKindIRP, accountID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, holdingID, lines[0].ID)
	assert.Equal(t, "360750", lines[1].StockCode)
	assert.True(t, lines[1].SaleFee.IsZero(), "sale_fee = %s", lines[1].SaleFee)
}

func TestHoldingTable_UpdateKeepsNaturalKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	accountID, holdingID := seedIRPHolding(t, db, "TEST-HOLDING-KEY", 0)

	repo := NewHoldingRepository(db.Pool)
	table, err := repo.Table(models.AccountKindIRP)
	require.NoError(t, err)

	tx, err := db.Pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	require.NoError(t, table.Update(ctx, tx, holdingID, models.HoldingRequest{
		AccountID: accountID + 1000, StockCode: "999999", Quantity: decimal.NewFromInt(11),
		PurchaseAvgPrice: decimal.NewFromInt(100), CurrentPrice: decimal.NewFromInt(110),
	}))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByID(ctx, models.AccountKindIRP, holdingID)
	require.NoError(t, err)
	assert.Equal(t, accountID, got.AccountID)
	assert.Equal(t, "069500", got.StockCode)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(11)), "quantity = %s", got.Quantity)
}
