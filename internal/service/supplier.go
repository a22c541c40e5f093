package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/farmstore/internal/store"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/google/uuid"
)

// SupplierService defines the methods for managing suppliers.
// Tax IDs are stored and looked up upper-cased.
type SupplierService interface {
	FindByTaxID(ctx context.Context, taxID string) (*SupplierDto, error)
	// FindAll returns suppliers in alphabetical order of company name.
	FindAll(ctx context.Context, offset, limit int32) ([]SupplierDto, error)
	Create(ctx context.Context, supplier SupplierDataDto) (*SupplierDto, error)
	Update(ctx context.Context, id uuid.UUID, supplier SupplierDataDto) (*SupplierDto, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Suppliers implements SupplierService.
type Suppliers struct {
	repository store.SupplierStore
}

func NewSupplierService(repo store.SupplierStore) *Suppliers {
	return &Suppliers{repository: repo}
}

// SupplierDataDto carries the writable supplier fields. Address is optional.
type SupplierDataDto struct {
	TaxID       string  `json:"tax_id"       validate:"required,max=32"`
	CompanyName string  `json:"company_name" validate:"required,max=200"`
	Category    string  `json:"category"     validate:"required,max=100"`
	Phone       string  `json:"phone"        validate:"required,max=32"`
	Address     *string `json:"address"      validate:"omitempty,max=300"`
}

func (d *SupplierDataDto) Normalize() {
	d.TaxID = strings.ToUpper(strings.TrimSpace(d.TaxID))
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	d.Category = strings.TrimSpace(d.Category)
	d.Phone = strings.TrimSpace(d.Phone)
	if d.Address != nil {
		address := strings.TrimSpace(*d.Address)
		if address == "" {
			d.Address = nil
		} else {
			d.Address = &address
		}
	}
}

type SupplierDto struct {
	ID           uuid.UUID `json:"id"`
	TaxID        string    `json:"tax_id"`
	CompanyName  string    `json:"company_name"`
	Category     string    `json:"category"`
	Phone        string    `json:"phone"`
	Address      *string   `json:"address,omitempty"`
	RegisteredAt string    `json:"registered_at"`
}

func (s *Suppliers) FindByTaxID(ctx context.Context, taxID string) (*SupplierDto, error) {
	normalized := strings.ToUpper(strings.TrimSpace(taxID))
	supplier, err := s.repository.FindSupplierByTaxID(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier by tax ID %s: %w", normalized, err)
	}
	return toSupplierDto(supplier), nil
}

func (s *Suppliers) FindAll(ctx context.Context, offset, limit int32) ([]SupplierDto, error) {
	suppliers, err := s.repository.ListSuppliers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suppliers: %w", err)
	}
	dtos := make([]SupplierDto, len(suppliers))
	for i, item := range suppliers {
		dtos[i] = *toSupplierDto(&item)
	}
	return dtos, nil
}

func (s *Suppliers) Create(ctx context.Context, supplier SupplierDataDto) (*SupplierDto, error) {
	supplier.Normalize()
	created, err := s.repository.CreateSupplier(ctx, toSupplierParams(supplier))
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return toSupplierDto(created), nil
}

func (s *Suppliers) Update(ctx context.Context, id uuid.UUID, supplier SupplierDataDto) (*SupplierDto, error) {
	supplier.Normalize()
	updated, err := s.repository.UpdateSupplier(ctx, id, toSupplierParams(supplier))
	if err != nil {
		return nil, fmt.Errorf("failed to update supplier with ID %s: %w", id, err)
	}
	return toSupplierDto(updated), nil
}

func (s *Suppliers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteSupplier(ctx, id)
}

func toSupplierParams(d SupplierDataDto) db.SupplierParams {
	return db.SupplierParams{
		TaxID:       d.TaxID,
		CompanyName: d.CompanyName,
		Category:    d.Category,
		Phone:       d.Phone,
		Address:     d.Address,
	}
}

func toSupplierDto(s *db.Supplier) *SupplierDto {
	return &SupplierDto{
		ID:           s.ID,
		TaxID:        s.TaxID,
		CompanyName:  s.CompanyName,
		Category:     s.Category,
		Phone:        s.Phone,
		Address:      s.Address,
		RegisteredAt: s.RegisteredAt.Format(time.RFC3339),
	}
}
