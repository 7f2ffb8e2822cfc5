package upsert

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pointKey struct {
	Subject string
	Date    string
}

// point mimics a daily observation. Label is a value field that may carry key-like text.
type point struct {
	Subject string
	Date    string
	Close   int
	Label   string
}

// memStore is the committed state shared by every fake transaction.
type memStore struct {
	rows       map[int64]point
	nextID     int64
	begins     int
	failCommit bool
	failInsert bool
}

func newMemStore(rows ...point) *memStore {
	s := &memStore{rows: map[int64]point{}}
	for _, r := range rows {
		s.nextID++
		s.rows[s.nextID] = r
	}
	return s
}

func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.begins++
	snapshot := make(map[int64]point, len(s.rows))
	for id, r := range s.rows {
		snapshot[id] = r
	}
	return &memTx{store: s, rows: snapshot, nextID: s.nextID}, nil
}

func (s *memStore) find(subject, date string) []point {
	var out []point
	for _, r := range s.rows {
		if r.Subject == subject && r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// memTx stages writes until Commit. Unused pgx.Tx methods panic through the nil embed.
type memTx struct {
	pgx.Tx
	store      *memStore
	rows       map[int64]point
	nextID     int64
	committed  bool
	rolledBack bool
}

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.committed || tx.rolledBack {
		return pgx.ErrTxClosed
	}
	if tx.store.failCommit {
		tx.rolledBack = true
		return errors.New("connection reset")
	}
	tx.store.rows = tx.rows
	tx.store.nextID = tx.nextID
	tx.committed = true
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.committed || tx.rolledBack {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type pointTable struct{}

func (pointTable) Name() string { return "test_points" }

func (pointTable) Key(p point) (pointKey, bool) {
	if p.Subject == "" || p.Date == "" {
		return pointKey{}, false
	}
	return pointKey{Subject: p.Subject, Date: p.Date}, true
}

func (pointTable) Find(ctx context.Context, tx pgx.Tx, key pointKey) (int64, bool, error) {
	mtx := tx.(*memTx)
	var ids []int64
	for id, r := range mtx.rows {
		if r.Subject == key.Subject && r.Date == key.Date {
			ids = append(ids, id)
		}
	}
	switch len(ids) {
	case 0:
		return 0, false, nil
	case 1:
		return ids[0], true, nil
	}
	return 0, false, ErrAmbiguousKey
}

func (pointTable) Insert(ctx context.Context, tx pgx.Tx, p point) error {
	mtx := tx.(*memTx)
	if mtx.store.failInsert {
		return errors.New("disk full")
	}
	mtx.nextID++
	mtx.rows[mtx.nextID] = p
	return nil
}

func (pointTable) Update(ctx context.Context, tx pgx.Tx, id int64, p point) error {
	mtx := tx.(*memTx)
	existing := mtx.rows[id]
	existing.Close = p.Close
	existing.Label = p.Label
	mtx.rows[id] = existing
	return nil
}

func TestMerge_IdempotentAcrossRuns(t *testing.T) {
	store := newMemStore()
	batch := []point{
		{Subject: "069500", Date: "2025-01-02", Close: 100},
		{Subject: "069500", Date: "2025-01-03", Close: 101},
		{Subject: "279530", Date: "2025-01-02", Close: 50},
	}

	first, err := Merge(context.Background(), store, pointTable{}, batch)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 3}, first)
	afterFirst := map[int64]point{}
	for id, r := range store.rows {
		afterFirst[id] = r
	}

	second, err := Merge(context.Background(), store, pointTable{}, batch)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 3}, second)
	assert.Equal(t, afterFirst, store.rows, "second run must not change stored data")
}

func TestMerge_PartitionsExistingAndNewKeys(t *testing.T) {
	store := newMemStore(
		point{Subject: "069500", Date: "2025-01-02", Close: 90},
		point{Subject: "069500", Date: "2025-01-03", Close: 91},
	)
	batch := []point{
		{Subject: "069500", Date: "2025-01-02", Close: 100},
		{Subject: "069500", Date: "2025-01-03", Close: 101},
		{Subject: "069500", Date: "2025-01-06", Close: 102},
		{Subject: "069500", Date: "", Close: 103},
	}

	res, err := Merge(context.Background(), store, pointTable{}, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Created+res.Updated)
	assert.Len(t, store.rows, 3)
	assert.Equal(t, 100, store.find("069500", "2025-01-02")[0].Close)
}

func TestMerge_SkipsRecordMissingDate(t *testing.T) {
	store := newMemStore()
	batch := []point{
		{Subject: "SCHD", Date: "2025-01-02", Close: 1},
		{Subject: "SCHD", Date: "2025-01-03", Close: 2},
		{Subject: "SCHD", Close: 3},
		{Subject: "SCHD", Date: "2025-01-06", Close: 4},
		{Subject: "SCHD", Date: "2025-01-07", Close: 5},
	}

	res, err := Merge(context.Background(), store, pointTable{}, batch)
	require.NoError(t, err)
	assert.Equal(t, len(batch)-1, res.Created+res.Updated)
	assert.Equal(t, 1, res.Skipped)
}

func TestMerge_NaturalKeyImmutableOnUpdate(t *testing.T) {
	store := newMemStore(point{Subject: "069500", Date: "2025-01-02", Close: 90, Label: "original"})

	res, err := Merge(context.Background(), store, pointTable{}, []point{
		{Subject: "069500", Date: "2025-01-02", Close: 95, Label: "subject=999999 date=1999-12-31"},
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 1}, res)

	require.Len(t, store.rows, 1)
	for _, r := range store.rows {
		assert.Equal(t, "069500", r.Subject)
		assert.Equal(t, "2025-01-02", r.Date)
		assert.Equal(t, 95, r.Close)
	}
}

func TestMerge_DuplicateKeyInBatchLastWins(t *testing.T) {
	store := newMemStore()
	batch := []point{
		{Subject: "069500", Date: "2025-01-02", Close: 100},
		{Subject: "069500", Date: "2025-01-02", Close: 105},
	}

	res, err := Merge(context.Background(), store, pointTable{}, batch)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Updated: 1}, res)

	rows := store.find("069500", "2025-01-02")
	require.Len(t, rows, 1)
	assert.Equal(t, 105, rows[0].Close)
}

func TestMerge_OrderIndependentForDistinctKeys(t *testing.T) {
	batch := []point{
		{Subject: "A", Date: "2025-01-02", Close: 1},
		{Subject: "B", Date: "2025-01-02", Close: 2},
		{Subject: "A", Date: "2025-01-03", Close: 3},
	}
	reversed := []point{batch[2], batch[1], batch[0]}

	s1, s2 := newMemStore(), newMemStore()
	_, err := Merge(context.Background(), s1, pointTable{}, batch)
	require.NoError(t, err)
	_, err = Merge(context.Background(), s2, pointTable{}, reversed)
	require.NoError(t, err)

	for _, p := range batch {
		assert.Equal(t, s1.find(p.Subject, p.Date), s2.find(p.Subject, p.Date))
	}
}

func TestMerge_CommitFailureRollsBackWholeBatch(t *testing.T) {
	store := newMemStore(point{Subject: "069500", Date: "2025-01-02", Close: 90})
	store.failCommit = true

	res, err := Merge(context.Background(), store, pointTable{}, []point{
		{Subject: "069500", Date: "2025-01-02", Close: 100},
		{Subject: "069500", Date: "2025-01-03", Close: 101},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, Result{}, res)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, 90, store.find("069500", "2025-01-02")[0].Close)
}

func TestMerge_WriteFailureAbortsBatch(t *testing.T) {
	store := newMemStore(point{Subject: "069500", Date: "2025-01-02", Close: 90})
	store.failInsert = true

	res, err := Merge(context.Background(), store, pointTable{}, []point{
		{Subject: "069500", Date: "2025-01-02", Close: 100},
		{Subject: "069500", Date: "2025-01-03", Close: 101},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "test_points")
	assert.Equal(t, Result{}, res)
	// The update of the first record was staged but never committed
	assert.Equal(t, 90, store.find("069500", "2025-01-02")[0].Close)
}

func TestMerge_AmbiguousKeyIsReported(t *testing.T) {
	store := newMemStore(
		point{Subject: "069500", Date: "2025-01-02", Close: 90},
		point{Subject: "069500", Date: "2025-01-02", Close: 91},
	)

	_, err := Merge(context.Background(), store, pointTable{}, []point{
		{Subject: "069500", Date: "2025-01-02", Close: 100},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousKey)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestMerge_EmptyBatchSkipsTransaction(t *testing.T) {
	store := newMemStore()

	res, err := Merge(context.Background(), store, pointTable{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, 0, store.begins)
}

func TestResult_Add(t *testing.T) {
	total := Result{Created: 1, Updated: 2, Skipped: 3}
	total.Add(Result{Created: 10, Updated: 20, Skipped: 30})
	assert.Equal(t, Result{Created: 11, Updated: 22, Skipped: 33}, total)
}

// idRows feeds FindOne a fixed list of ids.
type idRows struct {
	pgx.Rows
	ids []int64
	pos int
}

func (r *idRows) Next() bool {
	if r.pos >= len(r.ids) {
		return false
	}
	r.pos++
	return true
}

func (r *idRows) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.ids[r.pos-1]
	return nil
}

func (r *idRows) Err() error { return nil }
func (r *idRows) Close()     {}

type idQuerier struct{ ids []int64 }

func (q idQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &idRows{ids: q.ids}, nil
}

func TestFindOne(t *testing.T) {
	ctx := context.Background()

	_, found, err := FindOne(ctx, idQuerier{}, "SELECT id FROM t WHERE k = $1 LIMIT 2", "x")
	require.NoError(t, err)
	assert.False(t, found)

	id, found, err := FindOne(ctx, idQuerier{ids: []int64{42}}, "SELECT id FROM t WHERE k = $1 LIMIT 2", "x")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), id)

	_, _, err = FindOne(ctx, idQuerier{ids: []int64{42, 43}}, "SELECT id FROM t WHERE k = $1 LIMIT 2", "x")
	assert.ErrorIs(t, err, ErrAmbiguousKey)
	assert.Contains(t, err.Error(), "(first id 42)")
}
