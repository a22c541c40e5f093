package store

import (
	"errors"
	"fmt"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the store reacts to.
const (
	codeNumericOutOfRange    = "22003"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// uniqueKeys maps unique constraint names to the entity and field they protect.
var uniqueKeys = map[string]struct{ entity, field string }{
	"products_barcode_key":      {"Product", "barcode"},
	"customers_national_id_key": {"Customer", "national ID"},
	"suppliers_tax_id_key":      {"Supplier", "tax ID"},
}

// mapWriteError translates constraint violations into domain errors.
// value is the natural key of the row being written.
func mapWriteError(err error, value string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		key, ok := uniqueKeys[pgErr.ConstraintName]
		if !ok {
			key.entity, key.field = pgErr.TableName, pgErr.ConstraintName
		}
		return &perrors.DuplicateKeyError{Entity: key.entity, Field: key.field, Value: value}
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", perrors.ErrValidation, pgErr.ConstraintName)
	case codeNumericOutOfRange:
		return fmt.Errorf("%w: %s", perrors.ErrValidation, pgErr.Message)
	}
	return err
}

// IsRetryable reports whether err aborted a transaction that may succeed when run again.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeDeadlockDetected || pgErr.Code == codeSerializationFailure
}
