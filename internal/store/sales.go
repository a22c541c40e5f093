package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/internal/stock"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InSaleTx runs fn in one READ COMMITTED transaction.
// Stock decrements made through the SaleTx hold row locks until the transaction ends,
// so competing sales on the same product wait and then re-check the stock predicate.
func (p *PgStore) InSaleTx(ctx context.Context, fn func(tx SaleTx) error) error {
	return p.withTransaction(ctx, func(qtx *db.Queries) error {
		return fn(&pgSaleTx{q: qtx})
	})
}

// FindSaleByID retrieves a sale with its items.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (p *PgStore) FindSaleByID(ctx context.Context, id uuid.UUID) (*SaleRecord, error) {
	sale, err := p.q.FindSaleByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}
	items, err := p.q.FindSaleItemsBySaleIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to find sale items: %w", err)
	}
	return &SaleRecord{Sale: sale, Items: items}, nil
}

// ListSales retrieves sales, newest first, each with its items.
func (p *PgStore) ListSales(ctx context.Context, offset, limit int32) ([]SaleRecord, error) {
	sales, err := p.q.ListSales(ctx, db.ListParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	if len(sales) == 0 {
		return []SaleRecord{}, nil
	}

	ids := make([]uuid.UUID, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	items, err := p.q.FindSaleItemsBySaleIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale items: %w", err)
	}
	bySale := make(map[uuid.UUID][]db.SaleItem, len(sales))
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}

	records := make([]SaleRecord, len(sales))
	for i, s := range sales {
		records[i] = SaleRecord{Sale: s, Items: bySale[s.ID]}
		if records[i].Items == nil {
			records[i].Items = []db.SaleItem{}
		}
	}
	return records, nil
}

// pgSaleTx is a stock ledger and sale writer bound to one transaction.
type pgSaleTx struct {
	q *db.Queries
}

func (t *pgSaleTx) TryDecrement(ctx context.Context, id uuid.UUID, qty int32) (stock.Reservation, bool, error) {
	product, err := t.q.DecrementStock(ctx, db.StockChangeParams{ID: id, Quantity: qty})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stock.Reservation{}, false, nil
		}
		return stock.Reservation{}, false, err
	}
	return stock.Reservation{
		ProductID: product.ID,
		Barcode:   product.Barcode,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
	}, true, nil
}

func (t *pgSaleTx) Available(ctx context.Context, id uuid.UUID) (int32, error) {
	available, err := t.q.ProductStock(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return available, nil
}

func (t *pgSaleTx) Increment(ctx context.Context, id uuid.UUID, qty int32) error {
	_, err := t.q.IncrementStock(ctx, db.StockChangeParams{ID: id, Quantity: qty})
	if errors.Is(err, pgx.ErrNoRows) {
		return perrors.ErrProductNotFound
	}
	return err
}

func (t *pgSaleTx) InsertSale(ctx context.Context, params db.CreateSaleParams, items []db.SaleItem) (*SaleRecord, error) {
	sale, err := t.q.CreateSale(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", mapWriteError(err, ""))
	}
	stored := make([]db.SaleItem, 0, len(items))
	for i, item := range items {
		item.SaleID = sale.ID
		item.LineNo = int32(i + 1)
		saved, err := t.q.CreateSaleItem(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("failed to create sale item %d: %w", i+1, mapWriteError(err, ""))
		}
		stored = append(stored, saved)
	}
	return &SaleRecord{Sale: sale, Items: stored}, nil
}
