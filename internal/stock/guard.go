// Package stock applies the stock decrements of a sale without ever overselling.
//
// The Guard walks the sale lines in order and asks a Ledger to decrement each one
// conditionally (only when enough stock is left). When a line cannot be satisfied,
// every decrement already applied for the same sale is compensated in reverse order
// before the shortage is reported, so a failed sale leaves stock as it found it.
// A Ledger error is returned as is: the ledger's unit of work is lost and the caller
// discards it, so no compensation is attempted.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one requested sale item.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int32
}

// Reservation is the product state right after a successful decrement.
type Reservation struct {
	ProductID uuid.UUID
	Barcode   string
	Name      string
	Price     decimal.Decimal
	// Stock left after the decrement.
	Stock int32
}

// Ledger is the stock store the Guard works against.
// After any error the caller rolls the ledger back instead of using it further.
type Ledger interface {
	// TryDecrement subtracts qty from the product stock only if at least qty is left,
	// as one indivisible operation. ok is false when the product is unknown or short.
	TryDecrement(ctx context.Context, id uuid.UUID, qty int32) (res Reservation, ok bool, err error)
	// Available returns the current stock, 0 for an unknown product.
	Available(ctx context.Context, id uuid.UUID) (int32, error)
	// Increment adds qty back to the product stock.
	Increment(ctx context.Context, id uuid.UUID, qty int32) error
}

type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger}
}

// Reserve decrements the stock of every line or of none.
// On shortage it returns *errors.InsufficientStockError for the first failing line.
func (g *Guard) Reserve(ctx context.Context, ledger Ledger, lines []Line) ([]Reservation, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one item", perrors.ErrValidation)
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be greater than 0", perrors.ErrValidation, i)
		}
	}

	applied := make([]Line, 0, len(lines))
	reservations := make([]Reservation, 0, len(lines))
	held := make(map[uuid.UUID]int32, len(lines))

	for i, line := range lines {
		res, ok, err := ledger.TryDecrement(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock of %s: %w", line.ProductID, err)
		}
		if !ok {
			available, err := ledger.Available(ctx, line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to read stock of %s: %w", line.ProductID, err)
			}
			shortage := &perrors.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      line.Name,
				Remaining: available + held[line.ProductID],
				Index:     i,
			}
			return nil, g.compensate(ctx, ledger, applied, shortage)
		}
		held[line.ProductID] += line.Quantity
		applied = append(applied, line)
		reservations = append(reservations, res)
	}
	return reservations, nil
}

// compensate gives back every applied decrement, newest first, and returns cause
// joined with any compensation failure.
func (g *Guard) compensate(ctx context.Context, ledger Ledger, applied []Line, cause error) error {
	// a cancelled request must still give its stock back
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		if err := ledger.Increment(ctx, line.ProductID, line.Quantity); err != nil {
			g.logger.ErrorContext(ctx, "Failed to compensate stock decrement",
				slog.String("product_id", line.ProductID.String()),
				slog.Int("quantity", int(line.Quantity)),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("failed to compensate stock of %s: %w", line.ProductID, err))
		}
	}
	if len(errs) == 0 {
		return cause
	}
	return errors.Join(append([]error{cause}, errs...)...)
}
