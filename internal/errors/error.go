// Package errors provides the domain errors shared by the store, service and transport layers.
package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateKey     = errors.New("already registered")
	ErrDuplicateRequest = errors.New("request already processed")

	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrSaleNotFound     = errors.New("sale not found")

	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the first sale line that could not be satisfied.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	// Remaining is the stock that was available to the request when the line failed.
	Remaining int32
	// Index is the position of the failing line in the request.
	Index int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for: %s. Remaining: %d", e.Name, e.Remaining)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// DuplicateKeyError reports a unique constraint violation on a natural key.
type DuplicateKeyError struct {
	Entity string
	Field  string
	Value  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with %s %s is already registered", e.Entity, e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}
