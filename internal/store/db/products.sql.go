package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const productColumns = `id, barcode, name, price, stock, created_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Barcode,
		&i.Name,
		&i.Price,
		&i.Stock,
		&i.CreatedAt,
	)
	return i, err
}

const createProduct = `INSERT INTO products (barcode, name, price, stock)
VALUES ($1, $2, $3::numeric, $4)
RETURNING ` + productColumns

type CreateProductParams struct {
	Barcode string
	Name    string
	Price   decimal.Decimal
	Stock   int32
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct, arg.Barcode, arg.Name, arg.Price, arg.Stock)
	return scanProduct(row)
}

const findProductByID = `SELECT ` + productColumns + `
FROM products
WHERE id = $1`

func (q *Queries) FindProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findProductByID, id)
	return scanProduct(row)
}

const findProductByBarcode = `SELECT ` + productColumns + `
FROM products
WHERE barcode = $1`

func (q *Queries) FindProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := q.db.QueryRow(ctx, findProductByBarcode, barcode)
	return scanProduct(row)
}

const listProducts = `SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

type ListParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
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

const updateProduct = `UPDATE products
SET name  = $2,
    price = $3::numeric,
    stock = $4
WHERE id = $1
RETURNING ` + productColumns

type UpdateProductParams struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
	Stock int32
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct, arg.ID, arg.Name, arg.Price, arg.Stock)
	return scanProduct(row)
}

const incrementStock = `UPDATE products
SET stock = stock + $2
WHERE id = $1
RETURNING ` + productColumns

type StockChangeParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) IncrementStock(ctx context.Context, arg StockChangeParams) (Product, error) {
	row := q.db.QueryRow(ctx, incrementStock, arg.ID, arg.Quantity)
	return scanProduct(row)
}

// The predicate is re-evaluated on the locked row, so two decrements racing for
// the same units can never both pass.
const decrementStock = `UPDATE products
SET stock = stock - $2
WHERE id = $1
  AND stock >= $2
RETURNING ` + productColumns

func (q *Queries) DecrementStock(ctx context.Context, arg StockChangeParams) (Product, error) {
	row := q.db.QueryRow(ctx, decrementStock, arg.ID, arg.Quantity)
	return scanProduct(row)
}

const productStock = `SELECT stock
FROM products
WHERE id = $1`

func (q *Queries) ProductStock(ctx context.Context, id uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, productStock, id)
	var stock int32
	err := row.Scan(&stock)
	return stock, err
}

const deleteProduct = `DELETE
FROM products
WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
