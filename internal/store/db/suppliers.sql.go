package db

import (
	"context"

	"github.com/google/uuid"
)

const supplierColumns = `id, tax_id, company_name, category, phone, address, registered_at`

func scanSupplier(row interface{ Scan(...any) error }) (Supplier, error) {
	var i Supplier
	err := row.Scan(
		&i.ID,
		&i.TaxID,
		&i.CompanyName,
		&i.Category,
		&i.Phone,
		&i.Address,
		&i.RegisteredAt,
	)
	return i, err
}

const createSupplier = `INSERT INTO suppliers (tax_id, company_name, category, phone, address)
VALUES (upper($1), $2, $3, $4, $5)
RETURNING ` + supplierColumns

type SupplierParams struct {
	TaxID       string
	CompanyName string
	Category    string
	Phone       string
	Address     *string
}

func (q *Queries) CreateSupplier(ctx context.Context, arg SupplierParams) (Supplier, error) {
	row := q.db.QueryRow(ctx, createSupplier, arg.TaxID, arg.CompanyName, arg.Category, arg.Phone, arg.Address)
	return scanSupplier(row)
}

const findSupplierByTaxID = `SELECT ` + supplierColumns + `
FROM suppliers
WHERE tax_id = upper($1)`

func (q *Queries) FindSupplierByTaxID(ctx context.Context, taxID string) (Supplier, error) {
	row := q.db.QueryRow(ctx, findSupplierByTaxID, taxID)
	return scanSupplier(row)
}

const listSuppliers = `SELECT ` + supplierColumns + `
FROM suppliers
ORDER BY company_name, id
LIMIT $1 OFFSET $2`

func (q *Queries) ListSuppliers(ctx context.Context, arg ListParams) ([]Supplier, error) {
	rows, err := q.db.Query(ctx, listSuppliers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Supplier{}
	for rows.Next() {
		i, err := scanSupplier(rows)
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

const updateSupplier = `UPDATE suppliers
SET tax_id       = upper($2),
    company_name = $3,
    category     = $4,
    phone        = $5,
    address      = $6
WHERE id = $1
RETURNING ` + supplierColumns

func (q *Queries) UpdateSupplier(ctx context.Context, id uuid.UUID, arg SupplierParams) (Supplier, error) {
	row := q.db.QueryRow(ctx, updateSupplier, id, arg.TaxID, arg.CompanyName, arg.Category, arg.Phone, arg.Address)
	return scanSupplier(row)
}

const deleteSupplier = `DELETE
FROM suppliers
WHERE id = $1`

func (q *Queries) DeleteSupplier(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteSupplier, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
