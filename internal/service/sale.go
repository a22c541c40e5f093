package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/internal/stock"
	"github.com/abgdnv/farmstore/internal/store"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/abgdnv/farmstore/pkg/config"
	"github.com/abgdnv/farmstore/pkg/messaging"
	"github.com/abgdnv/farmstore/pkg/messaging/events"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	WalkInCustomerName       = "Walk-in customer"
	WalkInCustomerNationalID = "N/A"
)

// SaleService defines the methods for processing and reading sales.
type SaleService interface {
	// Process decrements the stock of every item and records the sale, or changes nothing.
	// Returns *errors.InsufficientStockError naming the first item that cannot be served.
	Process(ctx context.Context, sale SaleCreateDto) (*SaleDto, error)

	// FindByID returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*SaleDto, error)

	// FindAll returns sales, newest first.
	FindAll(ctx context.Context, offset, limit int32) ([]SaleDto, error)
}

// Sales implements SaleService.
type Sales struct {
	store     store.SaleStore
	guard     *stock.Guard
	publisher messaging.Publisher
	retry     config.RetryConfig
	logger    *slog.Logger
	tracer    trace.Tracer

	salesCounter    metric.Int64Counter
	rejectedCounter metric.Int64Counter
}

// NewSaleService creates a SaleService. Aborted sale transactions are retried as configured by retry.
func NewSaleService(saleStore store.SaleStore, guard *stock.Guard, publisher messaging.Publisher, retry config.RetryConfig, logger *slog.Logger) *Sales {
	meter := otel.Meter("farmstore/sales")
	salesCounter, err := meter.Int64Counter("sales_recorded", metric.WithDescription("Total number of recorded sales"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_recorded counter: %v", err))
	}
	rejectedCounter, err := meter.Int64Counter("sales_rejected_insufficient_stock", metric.WithDescription("Sales rejected for insufficient stock"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_rejected_insufficient_stock counter: %v", err))
	}
	return &Sales{
		store:           saleStore,
		guard:           guard,
		publisher:       publisher,
		retry:           retry,
		logger:          logger,
		tracer:          otel.Tracer("farmstore/sales"),
		salesCounter:    salesCounter,
		rejectedCounter: rejectedCounter,
	}
}

// SaleCustomerDto is the customer snapshot of a sale.
type SaleCustomerDto struct {
	Name       string `json:"name"        validate:"max=200"`
	NationalID string `json:"national_id" validate:"max=32"`
}

// SaleItemCreateDto is one requested line. Name is only used to report a shortage;
// the recorded name, code and price come from the product.
type SaleItemCreateDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Name      string    `json:"name"       validate:"max=200"`
	Quantity  int32     `json:"quantity"   validate:"required,gt=0"`
}

// SaleCreateDto represents the data transfer object for processing a sale.
// Total must be present; the recorded total is recomputed from product prices.
type SaleCreateDto struct {
	Customer *SaleCustomerDto    `json:"customer" validate:"omitempty"`
	Items    []SaleItemCreateDto `json:"items"    validate:"required,gt=0,dive"`
	Total    *decimal.Decimal    `json:"total"    validate:"required,money"`
}

type SaleItemDto struct {
	ProductID uuid.UUID       `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleDto struct {
	ID        uuid.UUID       `json:"id"`
	Customer  SaleCustomerDto `json:"customer"`
	Items     []SaleItemDto   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt string          `json:"created_at"`
}

// Process runs the stock guard and the sale insert in one transaction, retrying
// transactions aborted by deadlocks or serialization failures.
func (s *Sales) Process(ctx context.Context, sale SaleCreateDto) (*SaleDto, error) {
	ctx, span := s.tracer.Start(ctx, "Sales.Process", trace.WithAttributes(attribute.Int("sale.items", len(sale.Items))))
	defer span.End()

	lines := make([]stock.Line, len(sale.Items))
	for i, item := range sale.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = item.ProductID.String()
		}
		lines[i] = stock.Line{ProductID: item.ProductID, Name: name, Quantity: item.Quantity}
	}
	customer := customerSnapshot(sale.Customer)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialBackoff
	attempt := 0
	record, err := backoff.Retry(ctx, func() (*store.SaleRecord, error) {
		attempt++
		record, err := s.recordOnce(ctx, lines, customer)
		if err == nil {
			return record, nil
		}
		if store.IsRetryable(err) {
			s.logger.WarnContext(ctx, "Sale transaction aborted, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.retry.MaxAttempts))
	if err != nil {
		var stockErr *perrors.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.rejectedCounter.Add(ctx, 1)
			s.logger.WarnContext(ctx, "Sale rejected",
				slog.String("product_id", stockErr.ProductID.String()),
				slog.Int("remaining", int(stockErr.Remaining)),
				slog.Int("item", stockErr.Index))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "sale not recorded")
		return nil, fmt.Errorf("failed to process sale: %w", err)
	}

	if sale.Total != nil && !sale.Total.Equal(record.Sale.Total) {
		s.logger.WarnContext(ctx, "Sale total differs from computed total",
			slog.String("sale_id", record.Sale.ID.String()),
			slog.String("requested", sale.Total.String()),
			slog.String("computed", record.Sale.Total.String()))
	}

	s.publish(ctx, record)
	s.salesCounter.Add(ctx, 1)
	span.SetAttributes(attribute.String("sale.id", record.Sale.ID.String()))

	return toSaleDto(record), nil
}

// recordOnce is one transactional attempt: reserve stock, price the items from the
// reserved products and insert the sale.
func (s *Sales) recordOnce(ctx context.Context, lines []stock.Line, customer SaleCustomerDto) (*store.SaleRecord, error) {
	var record *store.SaleRecord
	err := s.store.InSaleTx(ctx, func(tx store.SaleTx) error {
		reservations, err := s.guard.Reserve(ctx, tx, lines)
		if err != nil {
			return err
		}
		items := make([]db.SaleItem, len(reservations))
		total := decimal.Zero
		for i, r := range reservations {
			subtotal := r.Price.Mul(decimal.NewFromInt32(lines[i].Quantity))
			items[i] = db.SaleItem{
				ProductID: r.ProductID,
				Code:      r.Barcode,
				Name:      r.Name,
				Price:     r.Price,
				Quantity:  lines[i].Quantity,
				Subtotal:  subtotal,
			}
			total = total.Add(subtotal)
		}
		record, err = tx.InsertSale(ctx, db.CreateSaleParams{
			CustomerName:       customer.Name,
			CustomerNationalID: customer.NationalID,
			Total:              total,
		}, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// publish announces a committed sale. A failure is logged and never fails the sale.
func (s *Sales) publish(ctx context.Context, record *store.SaleRecord) {
	lines := make([]events.SaleRecordedLine, len(record.Items))
	for i, item := range record.Items {
		lines[i] = events.SaleRecordedLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
	}
	event := events.SaleRecordedEvent{
		SaleID:             record.Sale.ID,
		CustomerNationalID: record.Sale.CustomerNationalID,
		Total:              record.Sale.Total,
		Items:              lines,
		CreatedAt:          record.Sale.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish SaleRecordedEvent",
			slog.String("sale_id", record.Sale.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *Sales) FindByID(ctx context.Context, id uuid.UUID) (*SaleDto, error) {
	record, err := s.store.FindSaleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale by ID %s: %w", id, err)
	}
	return toSaleDto(record), nil
}

func (s *Sales) FindAll(ctx context.Context, offset, limit int32) ([]SaleDto, error) {
	records, err := s.store.ListSales(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	dtos := make([]SaleDto, len(records))
	for i := range records {
		dtos[i] = *toSaleDto(&records[i])
	}
	return dtos, nil
}

// customerSnapshot fills the walk-in placeholder for missing customer fields.
func customerSnapshot(c *SaleCustomerDto) SaleCustomerDto {
	snapshot := SaleCustomerDto{Name: WalkInCustomerName, NationalID: WalkInCustomerNationalID}
	if c == nil {
		return snapshot
	}
	if name := strings.TrimSpace(c.Name); name != "" {
		snapshot.Name = name
	}
	if nationalID := strings.TrimSpace(c.NationalID); nationalID != "" {
		snapshot.NationalID = nationalID
	}
	return snapshot
}

func toSaleDto(record *store.SaleRecord) *SaleDto {
	items := make([]SaleItemDto, len(record.Items))
	for i, item := range record.Items {
		items[i] = SaleItemDto{
			ProductID: item.ProductID,
			Code:      item.Code,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
	}
	return &SaleDto{
		ID: record.Sale.ID,
		Customer: SaleCustomerDto{
			Name:       record.Sale.CustomerName,
			NationalID: record.Sale.CustomerNationalID,
		},
		Items:     items,
		Total:     record.Sale.Total,
		CreatedAt: record.Sale.CreatedAt.Format(time.RFC3339),
	}
}
