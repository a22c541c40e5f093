package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (p *PgStore) CreateSupplier(ctx context.Context, params db.SupplierParams) (*db.Supplier, error) {
	supplier, err := p.q.CreateSupplier(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", mapWriteError(err, strings.ToUpper(params.TaxID)))
	}
	return &supplier, nil
}

func (p *PgStore) FindSupplierByTaxID(ctx context.Context, taxID string) (*db.Supplier, error) {
	supplier, err := p.q.FindSupplierByTaxID(ctx, taxID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier by tax ID: %w", err)
	}
	return &supplier, nil
}

func (p *PgStore) ListSuppliers(ctx context.Context, offset, limit int32) ([]db.Supplier, error) {
	suppliers, err := p.q.ListSuppliers(ctx, db.ListParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (p *PgStore) UpdateSupplier(ctx context.Context, id uuid.UUID, params db.SupplierParams) (*db.Supplier, error) {
	supplier, err := p.q.UpdateSupplier(ctx, id, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to update supplier: %w", mapWriteError(err, strings.ToUpper(params.TaxID)))
	}
	return &supplier, nil
}

func (p *PgStore) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	count, err := p.q.DeleteSupplier(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier by ID: %w", err)
	}
	if count == 0 {
		return perrors.ErrSupplierNotFound
	}
	return nil
}
