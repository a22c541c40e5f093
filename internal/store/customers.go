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

func (p *PgStore) CreateCustomer(ctx context.Context, params db.CustomerParams) (*db.Customer, error) {
	customer, err := p.q.CreateCustomer(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", mapWriteError(err, params.NationalID))
	}
	return &customer, nil
}

func (p *PgStore) FindCustomerByNationalID(ctx context.Context, nationalID string) (*db.Customer, error) {
	customer, err := p.q.FindCustomerByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by national ID: %w", err)
	}
	return &customer, nil
}

func (p *PgStore) ListCustomers(ctx context.Context, offset, limit int32) ([]db.Customer, error) {
	customers, err := p.q.ListCustomers(ctx, db.ListParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (p *PgStore) UpdateCustomer(ctx context.Context, id uuid.UUID, params db.UpdateCustomerParams) (*db.Customer, error) {
	customer, err := p.q.UpdateCustomer(ctx, id, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", mapWriteError(err, ""))
	}
	return &customer, nil
}

func (p *PgStore) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	count, err := p.q.DeleteCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer by ID: %w", err)
	}
	if count == 0 {
		return perrors.ErrCustomerNotFound
	}
	return nil
}
