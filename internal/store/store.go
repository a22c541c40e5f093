// Package store provides the storage interfaces of the farm store and their PostgreSQL implementation.
package store

import (
	"context"

	"github.com/abgdnv/farmstore/internal/stock"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/google/uuid"
)

// ProductStore is an interface for product storage operations.
type ProductStore interface {
	// CreateProduct adds a new product.
	// Returns a DuplicateKeyError if the barcode is already registered.
	CreateProduct(ctx context.Context, params db.CreateProductParams) (*db.Product, error)

	// FindProductByBarcode retrieves a single product by its barcode.
	// Returns ErrProductNotFound if no product has the barcode.
	FindProductByBarcode(ctx context.Context, barcode string) (*db.Product, error)

	// ListProducts returns products, newest first.
	// Returns an empty slice if no products exist.
	ListProducts(ctx context.Context, offset, limit int32) ([]db.Product, error)

	// UpdateProduct changes name, price and stock. The barcode never changes.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateProduct(ctx context.Context, params db.UpdateProductParams) (*db.Product, error)

	// RestockProduct atomically adds quantity to the product stock.
	// Returns ErrProductNotFound if no product exists with the given ID.
	RestockProduct(ctx context.Context, id uuid.UUID, quantity int32) (*db.Product, error)

	// DeleteProduct removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CustomerStore is an interface for customer storage operations.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, params db.CustomerParams) (*db.Customer, error)
	FindCustomerByNationalID(ctx context.Context, nationalID string) (*db.Customer, error)
	// ListCustomers returns customers in alphabetical order of name.
	ListCustomers(ctx context.Context, offset, limit int32) ([]db.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, params db.UpdateCustomerParams) (*db.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

// SupplierStore is an interface for supplier storage operations.
// Tax IDs are compared upper-cased.
type SupplierStore interface {
	CreateSupplier(ctx context.Context, params db.SupplierParams) (*db.Supplier, error)
	FindSupplierByTaxID(ctx context.Context, taxID string) (*db.Supplier, error)
	// ListSuppliers returns suppliers in alphabetical order of company name.
	ListSuppliers(ctx context.Context, offset, limit int32) ([]db.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, params db.SupplierParams) (*db.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}

// SaleRecord is a sale together with its ordered items.
type SaleRecord struct {
	Sale  db.Sale
	Items []db.SaleItem
}

// SaleTx is the view of one sale transaction: a stock ledger whose changes
// stay invisible to other requests until commit, plus the sale insert.
type SaleTx interface {
	stock.Ledger

	// InsertSale stores the sale and its items. Item SaleID and LineNo are assigned here.
	InsertSale(ctx context.Context, params db.CreateSaleParams, items []db.SaleItem) (*SaleRecord, error)
}

// SaleStore is an interface for sale storage operations.
type SaleStore interface {
	// InSaleTx runs fn in one transaction. The transaction commits when fn returns nil
	// and rolls back otherwise.
	InSaleTx(ctx context.Context, fn func(tx SaleTx) error) error

	// FindSaleByID returns ErrSaleNotFound if no sale exists with the given ID.
	FindSaleByID(ctx context.Context, id uuid.UUID) (*SaleRecord, error)

	// ListSales returns sales with their items, newest first.
	ListSales(ctx context.Context, offset, limit int32) ([]SaleRecord, error)
}
