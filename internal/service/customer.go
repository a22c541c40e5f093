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

// CustomerService defines the methods for managing customers.
type CustomerService interface {
	// FindByNationalID returns ErrCustomerNotFound if nobody is registered with the ID.
	FindByNationalID(ctx context.Context, nationalID string) (*CustomerDto, error)
	// FindAll returns customers in alphabetical order of name.
	FindAll(ctx context.Context, offset, limit int32) ([]CustomerDto, error)
	Create(ctx context.Context, customer CustomerDataDto) (*CustomerDto, error)
	// Update changes the contact data of a customer. The national ID stays as registered.
	Update(ctx context.Context, id uuid.UUID, customer CustomerUpdateDto) (*CustomerDto, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Customers implements CustomerService.
type Customers struct {
	repository store.CustomerStore
}

func NewCustomerService(repo store.CustomerStore) *Customers {
	return &Customers{repository: repo}
}

// CustomerDataDto carries the fields of a new customer.
// Empty phone and city fall back to "No phone" and "Local".
type CustomerDataDto struct {
	NationalID string `json:"national_id" validate:"required,max=32"`
	Name       string `json:"name"        validate:"required,max=100"`
	Surname    string `json:"surname"     validate:"required,max=100"`
	Phone      string `json:"phone"       validate:"max=32"`
	City       string `json:"city"        validate:"max=100"`
}

func (d *CustomerDataDto) Normalize() {
	d.NationalID = strings.TrimSpace(d.NationalID)
	d.Name = strings.TrimSpace(d.Name)
	d.Surname = strings.TrimSpace(d.Surname)
	d.Phone = strings.TrimSpace(d.Phone)
	d.City = strings.TrimSpace(d.City)
}

// CustomerUpdateDto carries the fields a registered customer may change.
// The national ID is absent because it never changes.
type CustomerUpdateDto struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Surname string `json:"surname" validate:"required,max=100"`
	Phone   string `json:"phone"   validate:"max=32"`
	City    string `json:"city"    validate:"max=100"`
}

func (d *CustomerUpdateDto) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Surname = strings.TrimSpace(d.Surname)
	d.Phone = strings.TrimSpace(d.Phone)
	d.City = strings.TrimSpace(d.City)
}

type CustomerDto struct {
	ID           uuid.UUID `json:"id"`
	NationalID   string    `json:"national_id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	RegisteredAt string    `json:"registered_at"`
}

func (s *Customers) FindByNationalID(ctx context.Context, nationalID string) (*CustomerDto, error) {
	customer, err := s.repository.FindCustomerByNationalID(ctx, strings.TrimSpace(nationalID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer by national ID %s: %w", nationalID, err)
	}
	return toCustomerDto(customer), nil
}

func (s *Customers) FindAll(ctx context.Context, offset, limit int32) ([]CustomerDto, error) {
	customers, err := s.repository.ListCustomers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}
	dtos := make([]CustomerDto, len(customers))
	for i, item := range customers {
		dtos[i] = *toCustomerDto(&item)
	}
	return dtos, nil
}

func (s *Customers) Create(ctx context.Context, customer CustomerDataDto) (*CustomerDto, error) {
	customer.Normalize()
	created, err := s.repository.CreateCustomer(ctx, toCustomerParams(customer))
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return toCustomerDto(created), nil
}

func (s *Customers) Update(ctx context.Context, id uuid.UUID, customer CustomerUpdateDto) (*CustomerDto, error) {
	customer.Normalize()
	updated, err := s.repository.UpdateCustomer(ctx, id, db.UpdateCustomerParams{
		Name:    customer.Name,
		Surname: customer.Surname,
		Phone:   customer.Phone,
		City:    customer.City,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update customer with ID %s: %w", id, err)
	}
	return toCustomerDto(updated), nil
}

func (s *Customers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteCustomer(ctx, id)
}

func toCustomerParams(d CustomerDataDto) db.CustomerParams {
	return db.CustomerParams{
		NationalID: d.NationalID,
		Name:       d.Name,
		Surname:    d.Surname,
		Phone:      d.Phone,
		City:       d.City,
	}
}

func toCustomerDto(c *db.Customer) *CustomerDto {
	return &CustomerDto{
		ID:           c.ID,
		NationalID:   c.NationalID,
		Name:         c.Name,
		Surname:      c.Surname,
		Phone:        c.Phone,
		City:         c.City,
		RegisteredAt: c.RegisteredAt.Format(time.RFC3339),
	}
}
