package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const saleColumns = `id, customer_name, customer_national_id, total, created_at`

func scanSale(row interface{ Scan(...any) error }) (Sale, error) {
	var i Sale
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.CustomerNationalID,
		&i.Total,
		&i.CreatedAt,
	)
	return i, err
}

const createSale = `INSERT INTO sales (customer_name, customer_national_id, total)
VALUES ($1, $2, $3::numeric)
RETURNING ` + saleColumns

type CreateSaleParams struct {
	CustomerName       string
	CustomerNationalID string
	Total              decimal.Decimal
}

func (q *Queries) CreateSale(ctx context.Context, arg CreateSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, createSale, arg.CustomerName, arg.CustomerNationalID, arg.Total)
	return scanSale(row)
}

const createSaleItem = `INSERT INTO sale_items (sale_id, line_no, product_id, code, name, price, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric)
RETURNING sale_id, line_no, product_id, code, name, price, quantity, subtotal`

func (q *Queries) CreateSaleItem(ctx context.Context, arg SaleItem) (SaleItem, error) {
	row := q.db.QueryRow(ctx, createSaleItem,
		arg.SaleID,
		arg.LineNo,
		arg.ProductID,
		arg.Code,
		arg.Name,
		arg.Price,
		arg.Quantity,
		arg.Subtotal,
	)
	var i SaleItem
	err := row.Scan(
		&i.SaleID,
		&i.LineNo,
		&i.ProductID,
		&i.Code,
		&i.Name,
		&i.Price,
		&i.Quantity,
		&i.Subtotal,
	)
	return i, err
}

const findSaleByID = `SELECT ` + saleColumns + `
FROM sales
WHERE id = $1`

func (q *Queries) FindSaleByID(ctx context.Context, id uuid.UUID) (Sale, error) {
	row := q.db.QueryRow(ctx, findSaleByID, id)
	return scanSale(row)
}

const listSales = `SELECT ` + saleColumns + `
FROM sales
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

func (q *Queries) ListSales(ctx context.Context, arg ListParams) ([]Sale, error) {
	rows, err := q.db.Query(ctx, listSales, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Sale{}
	for rows.Next() {
		i, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findSaleItemsBySaleIDs = `SELECT sale_id, line_no, product_id, code, name, price, quantity, subtotal
FROM sale_items
WHERE sale_id = ANY ($1::uuid[])
ORDER BY sale_id, line_no`

func (q *Queries) FindSaleItemsBySaleIDs(ctx context.Context, saleIDs []uuid.UUID) ([]SaleItem, error) {
	rows, err := q.db.Query(ctx, findSaleItemsBySaleIDs, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SaleItem{}
	for rows.Next() {
		var i SaleItem
		if err := rows.Scan(
			&i.SaleID,
			&i.LineNo,
			&i.ProductID,
			&i.Code,
			&i.Name,
			&i.Price,
			&i.Quantity,
			&i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
