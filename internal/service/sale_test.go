package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/internal/stock"
	"github.com/abgdnv/farmstore/internal/store"
	"github.com/abgdnv/farmstore/internal/store/db"
	"github.com/abgdnv/farmstore/pkg/config"
	"github.com/abgdnv/farmstore/pkg/messaging"
	"github.com/abgdnv/farmstore/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSaleStore runs one sale transaction at a time and restores stock when fn fails.
type fakeSaleStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]db.Product
	sales    []store.SaleRecord
	// txErrs are returned, in order, by the next InSaleTx calls without running fn.
	txErrs  []error
	txCalls int
}

func newFakeSaleStore(products ...db.Product) *fakeSaleStore {
	f := &fakeSaleStore{products: make(map[uuid.UUID]db.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeSaleStore) InSaleTx(_ context.Context, fn func(tx store.SaleTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCalls++
	if len(f.txErrs) > 0 {
		err := f.txErrs[0]
		f.txErrs = f.txErrs[1:]
		return err
	}
	before := make(map[uuid.UUID]db.Product, len(f.products))
	for k, v := range f.products {
		before[k] = v
	}
	tx := &fakeSaleTx{store: f}
	if err := fn(tx); err != nil {
		f.products = before
		return err
	}
	if tx.record != nil {
		f.sales = append(f.sales, *tx.record)
	}
	return nil
}

func (f *fakeSaleStore) FindSaleByID(_ context.Context, id uuid.UUID) (*store.SaleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sales {
		if s.Sale.ID == id {
			return &s, nil
		}
	}
	return nil, perrors.ErrSaleNotFound
}

func (f *fakeSaleStore) ListSales(_ context.Context, _, _ int32) ([]store.SaleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.SaleRecord{}, f.sales...), nil
}

func (f *fakeSaleStore) stockOf(id uuid.UUID) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

// fakeSaleTx works on the products of its store; the store lock is held by InSaleTx.
type fakeSaleTx struct {
	store  *fakeSaleStore
	record *store.SaleRecord
}

func (t *fakeSaleTx) TryDecrement(_ context.Context, id uuid.UUID, qty int32) (stock.Reservation, bool, error) {
	p, ok := t.store.products[id]
	if !ok || p.Stock < qty {
		return stock.Reservation{}, false, nil
	}
	p.Stock -= qty
	t.store.products[id] = p
	return stock.Reservation{ProductID: p.ID, Barcode: p.Barcode, Name: p.Name, Price: p.Price, Stock: p.Stock}, true, nil
}

func (t *fakeSaleTx) Available(_ context.Context, id uuid.UUID) (int32, error) {
	return t.store.products[id].Stock, nil
}

func (t *fakeSaleTx) Increment(_ context.Context, id uuid.UUID, qty int32) error {
	p := t.store.products[id]
	p.Stock += qty
	t.store.products[id] = p
	return nil
}

func (t *fakeSaleTx) InsertSale(_ context.Context, params db.CreateSaleParams, items []db.SaleItem) (*store.SaleRecord, error) {
	sale := db.Sale{
		ID:                 uuid.New(),
		CustomerName:       params.CustomerName,
		CustomerNationalID: params.CustomerNationalID,
		Total:              params.Total,
		CreatedAt:          time.Now(),
	}
	for i := range items {
		items[i].SaleID = sale.ID
		items[i].LineNo = int32(i + 1)
	}
	t.record = &store.SaleRecord{Sale: sale, Items: items}
	return t.record, nil
}

type mockPublisher struct {
	events []messaging.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestSaleService(s store.SaleStore, publisher messaging.Publisher, maxAttempts uint) *Sales {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	retry := config.RetryConfig{MaxAttempts: maxAttempts, InitialBackoff: time.Millisecond}
	return NewSaleService(s, stock.NewGuard(logger), publisher, retry, logger)
}

func testProduct(barcode, name, price string, stockLevel int32) db.Product {
	return db.Product{ID: uuid.New(), Barcode: barcode, Name: name, Price: decimal.RequireFromString(price), Stock: stockLevel}
}

func Test_SaleService_Process_RecordsSale(t *testing.T) {
	// given
	cheese := testProduct("CH-1", "Goat cheese", "4.50", 3)
	honey := testProduct("HN-1", "Honey", "7.25", 2)
	saleStore := newFakeSaleStore(cheese, honey)
	publisher := &mockPublisher{}
	service := newTestSaleService(saleStore, publisher, 3)

	// when
	sale, err := service.Process(context.Background(), SaleCreateDto{
		Items: []SaleItemCreateDto{
			{ProductID: cheese.ID, Name: "client name ignored", Quantity: 2},
			{ProductID: honey.ID, Quantity: 1},
		},
		Total: ptr(decimal.RequireFromString("16.25")),
	})

	// then
	require.NoError(t, err)
	assert.Equal(t, WalkInCustomerName, sale.Customer.Name)
	assert.Equal(t, WalkInCustomerNationalID, sale.Customer.NationalID)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "Goat cheese", sale.Items[0].Name)
	assert.Equal(t, "CH-1", sale.Items[0].Code)
	assert.True(t, decimal.RequireFromString("9.00").Equal(sale.Items[0].Subtotal))
	assert.True(t, decimal.RequireFromString("16.25").Equal(sale.Total))

	assert.Equal(t, int32(1), saleStore.stockOf(cheese.ID))
	assert.Equal(t, int32(1), saleStore.stockOf(honey.ID))

	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(events.SaleRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, sale.ID, event.SaleID)
	assert.Equal(t, messaging.SalesRecordedSubject, event.Subject())
}

func Test_SaleService_Process_RecordsComputedTotal(t *testing.T) {
	// given
	milk := testProduct("MK-1", "Milk", "1.20", 5)
	saleStore := newFakeSaleStore(milk)
	service := newTestSaleService(saleStore, messaging.NopPublisher{}, 3)

	// when
	sale, err := service.Process(context.Background(), SaleCreateDto{
		Customer: &SaleCustomerDto{Name: " Ana ", NationalID: "V-1"},
		Items:    []SaleItemCreateDto{{ProductID: milk.ID, Name: "Milk", Quantity: 3}},
		Total:    ptr(decimal.NewFromInt(1)),
	})

	// then
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.60").Equal(sale.Total))
	assert.Equal(t, SaleCustomerDto{Name: "Ana", NationalID: "V-1"}, sale.Customer)
}

func Test_SaleService_Process_InsufficientStock(t *testing.T) {
	first := testProduct("P-1", "First", "1", 5)
	second := testProduct("P-2", "Second", "1", 5)
	third := testProduct("P-3", "Third", "1", 0)

	testCases := []struct {
		name          string
		items         []SaleItemCreateDto
		wantName      string
		wantRemaining int32
	}{
		{
			name: "third item unavailable",
			items: []SaleItemCreateDto{
				{ProductID: first.ID, Name: "First", Quantity: 1},
				{ProductID: second.ID, Name: "Second", Quantity: 1},
				{ProductID: third.ID, Name: "Third", Quantity: 1},
			},
			wantName:      "Third",
			wantRemaining: 0,
		},
		{
			name:          "quantity above stock",
			items:         []SaleItemCreateDto{{ProductID: first.ID, Name: "First", Quantity: 6}},
			wantName:      "First",
			wantRemaining: 5,
		},
		{
			name:          "unknown product without name",
			items:         []SaleItemCreateDto{{ProductID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Quantity: 1}},
			wantName:      "00000000-0000-0000-0000-000000000001",
			wantRemaining: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			saleStore := newFakeSaleStore(first, second, third)
			publisher := &mockPublisher{}
			service := newTestSaleService(saleStore, publisher, 3)

			// when
			sale, err := service.Process(context.Background(), SaleCreateDto{Items: tc.items, Total: ptr(decimal.Zero)})

			// then
			assert.Nil(t, sale)
			var stockErr *perrors.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			assert.Equal(t, tc.wantName, stockErr.Name)
			assert.Equal(t, tc.wantRemaining, stockErr.Remaining)
			assert.Equal(t, 1, saleStore.txCalls, "shortage must not be retried")
			assert.Equal(t, int32(5), saleStore.stockOf(first.ID))
			assert.Equal(t, int32(5), saleStore.stockOf(second.ID))
			assert.Empty(t, saleStore.sales)
			assert.Empty(t, publisher.events)
		})
	}
}

func Test_SaleService_Process_RetriesAbortedTransactions(t *testing.T) {
	// given
	milk := testProduct("MK-1", "Milk", "1", 1)
	saleStore := newFakeSaleStore(milk)
	saleStore.txErrs = []error{
		&pgconn.PgError{Code: "40P01", Message: "deadlock detected"},
		&pgconn.PgError{Code: "40001", Message: "could not serialize access"},
	}
	service := newTestSaleService(saleStore, messaging.NopPublisher{}, 3)

	// when
	sale, err := service.Process(context.Background(), SaleCreateDto{
		Items: []SaleItemCreateDto{{ProductID: milk.ID, Name: "Milk", Quantity: 1}},
		Total: ptr(decimal.NewFromInt(1)),
	})

	// then
	require.NoError(t, err)
	assert.NotNil(t, sale)
	assert.Equal(t, 3, saleStore.txCalls)
	assert.Equal(t, int32(0), saleStore.stockOf(milk.ID))
}

func Test_SaleService_Process_GivesUpAfterMaxAttempts(t *testing.T) {
	// given
	milk := testProduct("MK-1", "Milk", "1", 1)
	saleStore := newFakeSaleStore(milk)
	deadlock := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	saleStore.txErrs = []error{deadlock, deadlock, deadlock}
	service := newTestSaleService(saleStore, messaging.NopPublisher{}, 2)

	// when
	_, err := service.Process(context.Background(), SaleCreateDto{
		Items: []SaleItemCreateDto{{ProductID: milk.ID, Name: "Milk", Quantity: 1}},
		Total: ptr(decimal.NewFromInt(1)),
	})

	// then
	require.Error(t, err)
	assert.True(t, store.IsRetryable(err))
	assert.Equal(t, 2, saleStore.txCalls)
	assert.Equal(t, int32(1), saleStore.stockOf(milk.ID))
}

func Test_SaleService_Process_PublishFailureKeepsSale(t *testing.T) {
	// given
	milk := testProduct("MK-1", "Milk", "1", 1)
	saleStore := newFakeSaleStore(milk)
	publisher := &mockPublisher{err: errors.New("nats: connection closed")}
	service := newTestSaleService(saleStore, publisher, 1)

	// when
	sale, err := service.Process(context.Background(), SaleCreateDto{
		Items: []SaleItemCreateDto{{ProductID: milk.ID, Name: "Milk", Quantity: 1}},
		Total: ptr(decimal.NewFromInt(1)),
	})

	// then
	require.NoError(t, err)
	assert.NotNil(t, sale)
	assert.Len(t, saleStore.sales, 1)
}

func Test_SaleService_Process_ConcurrentLastUnit(t *testing.T) {
	// given
	const requests = 20
	cheese := testProduct("CH-1", "Last cheese", "3", 1)
	saleStore := newFakeSaleStore(cheese)
	service := newTestSaleService(saleStore, messaging.NopPublisher{}, 3)

	var wg sync.WaitGroup
	results := make([]error, requests)

	// when
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = service.Process(context.Background(), SaleCreateDto{
				Items: []SaleItemCreateDto{{ProductID: cheese.ID, Name: "Last cheese", Quantity: 1}},
				Total: ptr(decimal.NewFromInt(3)),
			})
		}()
	}
	wg.Wait()

	// then
	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, perrors.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int32(0), saleStore.stockOf(cheese.ID))
}

func Test_SaleService_FindByID(t *testing.T) {
	service := newTestSaleService(newFakeSaleStore(), messaging.NopPublisher{}, 1)

	_, err := service.FindByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, perrors.ErrSaleNotFound)
}

func Test_customerSnapshot(t *testing.T) {
	testCases := []struct {
		name  string
		input *SaleCustomerDto
		want  SaleCustomerDto
	}{
		{name: "absent", input: nil, want: SaleCustomerDto{Name: WalkInCustomerName, NationalID: WalkInCustomerNationalID}},
		{name: "blank fields", input: &SaleCustomerDto{Name: " ", NationalID: ""}, want: SaleCustomerDto{Name: WalkInCustomerName, NationalID: WalkInCustomerNationalID}},
		{name: "name only", input: &SaleCustomerDto{Name: "Ana"}, want: SaleCustomerDto{Name: "Ana", NationalID: WalkInCustomerNationalID}},
		{name: "complete", input: &SaleCustomerDto{Name: "Ana", NationalID: "V-1"}, want: SaleCustomerDto{Name: "Ana", NationalID: "V-1"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, customerSnapshot(tc.input))
		})
	}
}
