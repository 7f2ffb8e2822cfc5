package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateCode is returned when a natural code (institution code, ticker, ...) already exists
	ErrDuplicateCode = errors.New("code already exists")
	// ErrReferenced is returned when a row cannot be deleted or written because of a foreign key
	ErrReferenced = errors.New("row is referenced by or references missing data")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapConstraintError translates unique and foreign-key violations into repository sentinels
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicateCode
	case pgForeignKeyViolation:
		return ErrReferenced
	}
	return err
}

// numeric renders a decimal for a NUMERIC parameter
func numeric(d decimal.Decimal) string {
	return d.String()
}

// nullNumeric renders an optional decimal; nil stays SQL NULL
func nullNumeric(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
