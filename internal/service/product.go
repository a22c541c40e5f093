// Package service provides the business logic of the farm store.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/farmstore/internal/store"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines the methods for managing products.
type ProductService interface {
	// FindByBarcode retrieves a single product by its barcode.
	// Returns ErrProductNotFound if no product has the barcode.
	FindByBarcode(ctx context.Context, barcode string) (*ProductDto, error)

	// FindAll returns products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create adds a new product. The barcode must be unique.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update changes name, price and stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error)

	// Restock atomically adds quantity to the stock of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Restock(ctx context.Context, id uuid.UUID, quantity int32) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Products implements ProductService.
type Products struct {
	repository store.ProductStore
}

// NewProductService creates a new instance of ProductService with the provided repository.
func NewProductService(repo store.ProductStore) *Products {
	return &Products{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Stock defaults to 0.
type ProductCreateDto struct {
	Barcode string           `json:"barcode" validate:"required,max=64"`
	Name    string           `json:"name"    validate:"required,max=200"`
	Price   *decimal.Decimal `json:"price"   validate:"required,gte=0,money"`
	Stock   *int32           `json:"stock"   validate:"omitempty,gte=0"`
}

// Normalize trims the text fields.
func (d *ProductCreateDto) Normalize() {
	d.Barcode = strings.TrimSpace(d.Barcode)
	d.Name = strings.TrimSpace(d.Name)
}

// ProductUpdateDto represents the data transfer object for updating a product.
// The barcode is immutable and therefore absent.
type ProductUpdateDto struct {
	Name  string           `json:"name"  validate:"required,max=200"`
	Price *decimal.Decimal `json:"price" validate:"required,gte=0,money"`
	Stock *int32           `json:"stock" validate:"required,gte=0"`
}

func (d *ProductUpdateDto) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
}

// RestockDto represents the data transfer object for adding stock.
type RestockDto struct {
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID        uuid.UUID       `json:"id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int32           `json:"stock"`
	CreatedAt string          `json:"created_at"`
}

// FindByBarcode retrieves a product by its barcode and returns it as a ProductDto.
func (s *Products) FindByBarcode(ctx context.Context, barcode string) (*ProductDto, error) {
	product, err := s.repository.FindProductByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by barcode %s: %w", barcode, err)
	}
	return toProductDto(product), nil
}

// FindAll retrieves products, newest first, and returns them as ProductDtos.
func (s *Products) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toProductDto(&item)
	}
	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Products) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	product.Normalize()
	var initialStock int32
	if product.Stock != nil {
		initialStock = *product.Stock
	}
	p, err := s.repository.CreateProduct(ctx, db.CreateProductParams{
		Barcode: product.Barcode,
		Name:    product.Name,
		Price:   *product.Price,
		Stock:   initialStock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toProductDto(p), nil
}

// Update modifies an existing product and returns it as a ProductDto.
func (s *Products) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error) {
	product.Normalize()
	updated, err := s.repository.UpdateProduct(ctx, db.UpdateProductParams{
		ID:    id,
		Name:  product.Name,
		Price: *product.Price,
		Stock: *product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return toProductDto(updated), nil
}

// Restock adds quantity to the stock of a product and returns it as a ProductDto.
func (s *Products) Restock(ctx context.Context, id uuid.UUID, quantity int32) (*ProductDto, error) {
	product, err := s.repository.RestockProduct(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to restock product with ID %s: %w", id, err)
	}
	return toProductDto(product), nil
}

// DeleteByID deletes a product by its ID.
func (s *Products) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteProduct(ctx, id)
}

func toProductDto(product *db.Product) *ProductDto {
	return &ProductDto{
		ID:        product.ID,
		Barcode:   product.Barcode,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt.Format(time.RFC3339),
	}
}
