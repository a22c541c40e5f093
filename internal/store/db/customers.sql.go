package db

import (
	"context"

	"github.com/google/uuid"
)

const customerColumns = `id, national_id, name, surname, phone, city, registered_at`

func scanCustomer(row interface{ Scan(...any) error }) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.NationalID,
		&i.Name,
		&i.Surname,
		&i.Phone,
		&i.City,
		&i.RegisteredAt,
	)
	return i, err
}

// Empty phone or city falls back to the column default.
const createCustomer = `INSERT INTO customers (national_id, name, surname, phone, city)
VALUES ($1, $2, $3,
        COALESCE(NULLIF($4, ''), 'No phone'),
        COALESCE(NULLIF($5, ''), 'Local'))
RETURNING ` + customerColumns

type CustomerParams struct {
	NationalID string
	Name       string
	Surname    string
	Phone      string
	City       string
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer, arg.NationalID, arg.Name, arg.Surname, arg.Phone, arg.City)
	return scanCustomer(row)
}

const findCustomerByNationalID = `SELECT ` + customerColumns + `
FROM customers
WHERE national_id = $1`

func (q *Queries) FindCustomerByNationalID(ctx context.Context, nationalID string) (Customer, error) {
	row := q.db.QueryRow(ctx, findCustomerByNationalID, nationalID)
	return scanCustomer(row)
}

const listCustomers = `SELECT ` + customerColumns + `
FROM customers
ORDER BY name, surname, id
LIMIT $1 OFFSET $2`

func (q *Queries) ListCustomers(ctx context.Context, arg ListParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Customer{}
	for rows.Next() {
		i, err := scanCustomer(rows)
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

// The national ID is the customer's identity and is never rewritten.
const updateCustomer = `UPDATE customers
SET name    = $2,
    surname = $3,
    phone   = COALESCE(NULLIF($4, ''), 'No phone'),
    city    = COALESCE(NULLIF($5, ''), 'Local')
WHERE id = $1
RETURNING ` + customerColumns

type UpdateCustomerParams struct {
	Name    string
	Surname string
	Phone   string
	City    string
}

func (q *Queries) UpdateCustomer(ctx context.Context, id uuid.UUID, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, updateCustomer, id, arg.Name, arg.Surname, arg.Phone, arg.City)
	return scanCustomer(row)
}

const deleteCustomer = `DELETE
FROM customers
WHERE id = $1`

func (q *Queries) DeleteCustomer(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCustomer, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
