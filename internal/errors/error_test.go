package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockError(t *testing.T) {
	err := fmt.Errorf("process sale: %w", &InsufficientStockError{ProductID: uuid.New(), Name: "Goat cheese", Remaining: 3})

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for: Goat cheese. Remaining: 3", stockErr.Error())
}

func TestDuplicateKeyError(t *testing.T) {
	err := fmt.Errorf("create product: %w", &DuplicateKeyError{Entity: "Product", Field: "barcode", Value: "TEST-999"})

	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "Product with barcode TEST-999 is already registered")
}
