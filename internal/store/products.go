package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateProduct adds a new product.
// Returns a DuplicateKeyError if the barcode is already registered.
func (p *PgStore) CreateProduct(ctx context.Context, params db.CreateProductParams) (*db.Product, error) {
	product, err := p.q.CreateProduct(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", mapWriteError(err, params.Barcode))
	}
	return &product, nil
}

// FindProductByBarcode retrieves a product by its barcode.
// Returns ErrProductNotFound if no product has the barcode.
func (p *PgStore) FindProductByBarcode(ctx context.Context, barcode string) (*db.Product, error) {
	product, err := p.q.FindProductByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}
	return &product, nil
}

// ListProducts retrieves products, newest first, with pagination support.
func (p *PgStore) ListProducts(ctx context.Context, offset, limit int32) ([]db.Product, error) {
	products, err := p.q.ListProducts(ctx, db.ListParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct modifies an existing product's name, price and stock.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) UpdateProduct(ctx context.Context, params db.UpdateProductParams) (*db.Product, error) {
	product, err := p.q.UpdateProduct(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", mapWriteError(err, params.ID.String()))
	}
	return &product, nil
}

// RestockProduct atomically adds quantity to the product stock.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) RestockProduct(ctx context.Context, id uuid.UUID, quantity int32) (*db.Product, error) {
	product, err := p.q.IncrementStock(ctx, db.StockChangeParams{ID: id, Quantity: quantity})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to restock product: %w", mapWriteError(err, ""))
	}
	return &product, nil
}

// DeleteProduct removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	count, err := p.q.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if count == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}
