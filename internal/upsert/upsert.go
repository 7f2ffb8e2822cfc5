// Package upsert merges batches of externally sourced records into Postgres tables
// by natural key: existing rows are updated in place, missing rows are inserted,
// and the whole batch commits or rolls back as one transaction.
package upsert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrAmbiguousKey means more than one stored row matched a natural key.
	// The schema forbids this, so it is reported as a data-integrity fault.
	ErrAmbiguousKey = errors.New("natural key matched more than one row")

	// ErrStorage wraps every database failure that aborted a batch.
	ErrStorage = errors.New("storage error")
)

// Beginner starts the transaction a batch runs in. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Table binds a record type to its storage.
//
// Key extracts the natural key; ok is false when a required key component is missing,
// in which case the record is skipped. Update must write every value column and must
// never write the natural-key columns.
type Table[K comparable, R any] interface {
	Name() string
	Key(rec R) (key K, ok bool)
	Find(ctx context.Context, tx pgx.Tx, key K) (id int64, found bool, err error)
	Insert(ctx context.Context, tx pgx.Tx, rec R) error
	Update(ctx context.Context, tx pgx.Tx, id int64, rec R) error
}

// Result counts how a batch was applied.
// Created+Updated equals the number of records with a valid natural key.
type Result struct {
	Created int
	Updated int
	Skipped int
}

// Add accumulates r2 into r.
func (r *Result) Add(r2 Result) {
	r.Created += r2.Created
	r.Updated += r2.Updated
	r.Skipped += r2.Skipped
}

// Merge applies records to table inside a single transaction.
//
// Each write runs immediately on the transaction, so when the same key appears twice
// in one batch the later lookup sees the earlier insert and the last occurrence wins.
// A lookup, write, or commit failure rolls back the batch and returns a zero Result.
func Merge[K comparable, R any](ctx context.Context, db Beginner, table Table[K, R], records []R) (Result, error) {
	start := time.Now()
	defer func() {
		log.Debugf("upsert.Merge(%s, %d records) took %d ms", table.Name(), len(records), time.Since(start).Milliseconds())
	}()

	if len(records) == 0 {
		return Result{}, nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to begin %s batch: %w", ErrStorage, table.Name(), err)
	}
	defer tx.Rollback(ctx)

	res, err := MergeTx(ctx, tx, table, records)
	if err != nil {
		return Result{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: failed to commit %s batch: %w", ErrStorage, table.Name(), err)
	}
	return res, nil
}

// MergeTx is Merge on a caller-owned transaction. The caller commits or rolls back.
func MergeTx[K comparable, R any](ctx context.Context, tx pgx.Tx, table Table[K, R], records []R) (Result, error) {
	var res Result
	for i, rec := range records {
		key, ok := table.Key(rec)
		if !ok {
			res.Skipped++
			continue
		}

		id, found, err := table.Find(ctx, tx, key)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s record %d lookup %v: %w", ErrStorage, table.Name(), i, key, err)
		}

		if found {
			if err := table.Update(ctx, tx, id, rec); err != nil {
				return Result{}, fmt.Errorf("%w: %s record %d update %v: %w", ErrStorage, table.Name(), i, key, err)
			}
			res.Updated++
			continue
		}

		if err := table.Insert(ctx, tx, rec); err != nil {
			return Result{}, fmt.Errorf("%w: %s record %d insert %v: %w", ErrStorage, table.Name(), i, key, err)
		}
		res.Created++
	}
	return res, nil
}

// Querier is the read side of pgx.Tx, *pgxpool.Pool and *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FindOne runs a natural-key lookup query that selects only the surrogate id.
// No row yields found=false; two or more rows yield ErrAmbiguousKey.
func FindOne(ctx context.Context, q Querier, query string, args ...any) (id int64, found bool, err error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
		if n > 1 {
			return 0, false, fmt.Errorf("%w (first id %d)", ErrAmbiguousKey, id)
		}
		if err := rows.Scan(&id); err != nil {
			return 0, false, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, false, err
	}
	return id, n == 1, nil
}
