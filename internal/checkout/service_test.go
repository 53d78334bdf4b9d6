package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/internal/cart"
	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/internal/orders/orderid"
	"github.com/adriancampa/storeloom-backend/internal/products"
	"github.com/adriancampa/storeloom-backend/pkg/config"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

type cartStub struct {
	active     *models.CartRecord
	converted  []uuid.UUID
	statusErrs []error
}

func (s *cartStub) WithTx(_ *gorm.DB) cart.Repository { return s }
func (s *cartStub) CreateCart(_ context.Context, c *models.CartRecord) (*models.CartRecord, error) {
	return c, nil
}
func (s *cartStub) FindActiveCart(_ context.Context, _, _ uuid.UUID) (*models.CartRecord, error) {
	return s.active, nil
}
func (s *cartStub) FindCartWithItems(_ context.Context, _ uuid.UUID) (*models.CartRecord, error) {
	return s.active, nil
}
func (s *cartStub) UpsertItem(_ context.Context, _ *models.CartItem) error          { return nil }
func (s *cartStub) UpdateItemQty(_ context.Context, _, _ uuid.UUID, _ int) error    { return nil }
func (s *cartStub) RemoveItem(_ context.Context, _, _ uuid.UUID) error              { return nil }
func (s *cartStub) ClearItems(_ context.Context, _ uuid.UUID) error                 { return nil }
func (s *cartStub) UpdateCartStatus(_ context.Context, id uuid.UUID, status enums.CartStatus) error {
	if status == enums.CartStatusConverted {
		s.converted = append(s.converted, id)
	}
	return nil
}

type productsStub struct {
	byID       map[uuid.UUID]*models.Product
	decrements map[uuid.UUID]int
	decErr     error
}

func newProductsStub(list ...*models.Product) *productsStub {
	stub := &productsStub{
		byID:       map[uuid.UUID]*models.Product{},
		decrements: map[uuid.UUID]int{},
	}
	for _, p := range list {
		stub.byID[p.ID] = p
	}
	return stub
}

func (s *productsStub) WithTx(_ *gorm.DB) products.Repository { return s }
func (s *productsStub) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	return p, nil
}
func (s *productsStub) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return s.byID[id], nil
}
func (s *productsStub) FindProductBySKU(_ context.Context, _ uuid.UUID, _ string) (*models.Product, error) {
	return nil, nil
}
func (s *productsStub) ListTenantProducts(_ context.Context, _ uuid.UUID, _ products.ProductFilters) ([]models.Product, error) {
	return nil, nil
}
func (s *productsStub) UpdateProduct(_ context.Context, _ uuid.UUID, _ map[string]any) error {
	return nil
}
func (s *productsStub) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	if s.decErr != nil {
		return s.decErr
	}
	s.decrements[id] += qty
	return nil
}

type ordersStub struct {
	existing   map[string]*models.Order
	recent     *models.Order
	created    []*models.Order
	createErrs []error
}

func newOrdersStub() *ordersStub {
	return &ordersStub{existing: map[string]*models.Order{}}
}

func (s *ordersStub) WithTx(_ *gorm.DB) orders.Repository { return s }
func (s *ordersStub) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	s.created = append(s.created, order)
	s.existing[order.ID] = order
	return order, nil
}
func (s *ordersStub) FindOrderByID(_ context.Context, id string) (*models.Order, error) {
	return s.existing[id], nil
}
func (s *ordersStub) FindOrderByNumber(_ context.Context, number string) (*models.Order, error) {
	for _, order := range s.existing {
		if order.OrderNumber == number {
			return order, nil
		}
	}
	return nil, nil
}
func (s *ordersStub) FindMostRecentOrder(_ context.Context) (*models.Order, error) {
	return s.recent, nil
}
func (s *ordersStub) FindOrderDetail(_ context.Context, id string) (*models.Order, error) {
	return s.existing[id], nil
}
func (s *ordersStub) ListTenantOrders(_ context.Context, _ uuid.UUID, _ pagination.Params, _ orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}
func (s *ordersStub) ListCustomerOrders(_ context.Context, _ uuid.UUID, _ pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}
func (s *ordersStub) UpdateOrder(_ context.Context, _ string, _ map[string]any) error { return nil }

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fixture struct {
	tenantID   uuid.UUID
	customerID uuid.UUID
	carts      *cartStub
	products   *productsStub
	orders     *ordersStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tenantID := uuid.New()
	productID := uuid.New()
	cartID := uuid.New()
	customerID := uuid.New()

	product := &models.Product{
		ID:             productID,
		TenantID:       tenantID,
		SKU:            "SKU-1",
		Name:           "Widget",
		UnitPriceCents: 500,
		TaxRateBps:     1000,
		StockQty:       10,
		Status:         enums.ProductStatusPublished,
	}
	record := &models.CartRecord{
		ID:         cartID,
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
		Items: []models.CartItem{{
			CartID:         cartID,
			ProductID:      productID,
			ProductSKU:     "SKU-1",
			ProductName:    "Widget",
			UnitPriceCents: 500,
			Qty:            2,
		}},
	}

	return &fixture{
		tenantID:   tenantID,
		customerID: customerID,
		carts:      &cartStub{active: record},
		products:   newProductsStub(product),
		orders:     newOrdersStub(),
	}
}

func (f *fixture) service(t *testing.T, retries int) Service {
	t.Helper()
	svc, err := NewService(
		f.carts, f.products, f.orders,
		passthroughTx{},
		config.CheckoutConfig{InsertRetries: retries},
		testLogger(),
		WithGeneratorOptions(
			orderid.WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
		),
	)
	require.NoError(t, err)
	return svc
}

func (f *fixture) input() CheckoutInput {
	return CheckoutInput{TenantID: f.tenantID, CustomerID: f.customerID, ShippingCents: 250}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, 3)

	order, err := svc.Checkout(context.Background(), f.input())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Regexp(t, `^\d{4}-\d{4}-\d{4}$`, order.ID)
	assert.Equal(t, "2025-0601-0001", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, enums.CurrencyUSD, order.Currency)

	assert.Equal(t, 1000, order.SubtotalCents)
	assert.Equal(t, 100, order.TaxCents)
	assert.Equal(t, 250, order.ShippingCents)
	assert.Equal(t, 1350, order.TotalCents)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "SKU-1", order.Items[0].SKU)
	assert.Equal(t, 2, order.Items[0].Qty)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	// Inventory decremented and cart converted.
	productID := *order.Items[0].ProductID
	assert.Equal(t, 2, f.products.decrements[productID])
	assert.Len(t, f.carts.converted, 1)
}

func TestCheckoutSequencesOrderNumbers(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, 3)

	first, err := svc.Checkout(context.Background(), f.input())
	require.NoError(t, err)
	f.orders.recent = first

	second, err := svc.Checkout(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, "2025-0601-0001", first.OrderNumber)
	assert.Equal(t, "2025-0601-0002", second.OrderNumber)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.carts.active = nil
	svc := f.service(t, 3)

	_, err := svc.Checkout(context.Background(), f.input())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, f.orders.created)
}

func TestCheckoutUnpublishedProduct(t *testing.T) {
	f := newFixture(t)
	for _, p := range f.products.byID {
		p.Status = enums.ProductStatusArchived
	}
	svc := f.service(t, 3)

	_, err := svc.Checkout(context.Background(), f.input())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newFixture(t)
	for _, p := range f.products.byID {
		p.StockQty = 1
	}
	svc := f.service(t, 3)

	_, err := svc.Checkout(context.Background(), f.input())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Empty(t, f.carts.converted)
}

func TestCheckoutStockRaceAtDecrement(t *testing.T) {
	f := newFixture(t)
	f.products.decErr = products.ErrInsufficientStock
	svc := f.service(t, 3)

	_, err := svc.Checkout(context.Background(), f.input())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCheckoutRetriesUniqueViolation(t *testing.T) {
	f := newFixture(t)
	f.orders.createErrs = []error{errors.New(`duplicate key value violates unique constraint "uq_orders_order_number"`)}
	svc := f.service(t, 3)

	order, err := svc.Checkout(context.Background(), f.input())
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Len(t, f.orders.created, 1)
}

func TestCheckoutExhaustsInsertRetries(t *testing.T) {
	f := newFixture(t)
	dup := errors.New(`duplicate key value violates unique constraint "orders_pkey"`)
	f.orders.createErrs = []error{dup, dup, dup}
	svc := f.service(t, 3)

	_, err := svc.Checkout(context.Background(), f.input())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeExhausted, pkgerrors.As(err).Code())
	assert.Empty(t, f.orders.created)
}

func TestCheckoutGeneratorExhaustion(t *testing.T) {
	f := newFixture(t)
	// Every candidate id reads as taken.
	stub := &alwaysTakenOrders{ordersStub: f.orders}
	svc, err := NewService(
		f.carts, f.products, stub,
		passthroughTx{},
		config.CheckoutConfig{InsertRetries: 3},
		testLogger(),
	)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), f.input())
	require.Error(t, err)
	assert.True(t, orderid.IsExhausted(err))
}

type alwaysTakenOrders struct {
	*ordersStub
}

func (s *alwaysTakenOrders) WithTx(_ *gorm.DB) orders.Repository { return s }

func (s *alwaysTakenOrders) FindOrderByID(_ context.Context, id string) (*models.Order, error) {
	return &models.Order{ID: id}, nil
}
