package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uuid.UUID
	Barcode   string
	Name      string
	Price     decimal.Decimal
	Stock     int32
	CreatedAt time.Time
}

type Customer struct {
	ID           uuid.UUID
	NationalID   string
	Name         string
	Surname      string
	Phone        string
	City         string
	RegisteredAt time.Time
}

type Supplier struct {
	ID           uuid.UUID
	TaxID        string
	CompanyName  string
	Category     string
	Phone        string
	Address      *string
	RegisteredAt time.Time
}

type Sale struct {
	ID                 uuid.UUID
	CustomerName       string
	CustomerNationalID string
	Total              decimal.Decimal
	CreatedAt          time.Time
}

type SaleItem struct {
	SaleID    uuid.UUID
	LineNo    int32
	ProductID uuid.UUID
	Code      string
	Name      string
	Price     decimal.Decimal
	Quantity  int32
	Subtotal  decimal.Decimal
}
