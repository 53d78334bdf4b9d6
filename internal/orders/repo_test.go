package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  tenant_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  fulfillment_status TEXT NOT NULL DEFAULT 'unfulfilled',
  subtotal_cents INTEGER NOT NULL,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  notes TEXT,
  confirmed_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, id, number string, tenantID, customerID uuid.UUID, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		ID:            id,
		OrderNumber:   number,
		TenantID:      tenantID,
		CustomerID:    customerID,
		Currency:      enums.CurrencyUSD,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		SubtotalCents: 1000,
		TotalCents:    1100,
		Items: []models.OrderItem{{
			ID:             uuid.New(),
			SKU:            "SKU-1",
			Name:           "Widget",
			UnitPriceCents: 500,
			Qty:            2,
			LineTotalCents: 1000,
		}},
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestCreateAndFindOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	customerID := uuid.New()
	seedOrder(t, db, "2025-1234-0601", "2025-0601-0001", tenantID, customerID, time.Now().UTC())

	found, err := repo.FindOrderByID(ctx, "2025-1234-0601")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "2025-0601-0001", found.OrderNumber)
	assert.Equal(t, tenantID, found.TenantID)

	missing, err := repo.FindOrderByID(ctx, "2025-0000-0101")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindOrderByNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "2025-1234-0601", "2025-0601-0001", uuid.New(), uuid.New(), time.Now().UTC())

	found, err := repo.FindOrderByNumber(ctx, "2025-0601-0001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "2025-1234-0601", found.ID)

	missing, err := repo.FindOrderByNumber(ctx, "2025-0601-9999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindMostRecentOrderUnscopedByTenant(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	seedOrder(t, db, "2025-0001-0601", "2025-0601-0001", uuid.New(), uuid.New(), base)
	seedOrder(t, db, "2025-0002-0601", "2025-0601-0002", uuid.New(), uuid.New(), base.Add(time.Minute))

	recent, err := repo.FindMostRecentOrder(ctx)
	require.NoError(t, err)
	require.NotNil(t, recent)
	assert.Equal(t, "2025-0601-0002", recent.OrderNumber)
}

func TestFindMostRecentOrderEmpty(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	recent, err := repo.FindMostRecentOrder(context.Background())
	require.NoError(t, err)
	assert.Nil(t, recent)
}

func TestFindOrderDetailPreloadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "2025-1234-0601", "2025-0601-0001", uuid.New(), uuid.New(), time.Now().UTC())

	detail, err := repo.FindOrderDetail(ctx, "2025-1234-0601")
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "SKU-1", detail.Items[0].SKU)
}

func TestListTenantOrdersFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	otherTenant := uuid.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedOrder(t, db,
			fmt.Sprintf("2025-%04d-0601", i+1),
			fmt.Sprintf("2025-0601-%04d", i+1),
			tenantID, uuid.New(), base.Add(time.Duration(i)*time.Minute))
	}
	seedOrder(t, db, "2025-9999-0601", "2025-0601-9999", otherTenant, uuid.New(), base.Add(time.Hour))

	page, err := repo.ListTenantOrders(ctx, tenantID, pagination.Params{Limit: 2}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)
	// Newest first.
	assert.True(t, page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt))

	rest, err := repo.ListTenantOrders(ctx, tenantID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)

	shipped := enums.OrderStatusShipped
	none, err := repo.ListTenantOrders(ctx, tenantID, pagination.Params{}, OrderFilters{Status: &shipped})
	require.NoError(t, err)
	assert.Empty(t, none.Orders)
}

func TestListTenantOrdersDateRange(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	seedOrder(t, db, "2025-0001-0531", "2025-0531-0001", tenantID, uuid.New(),
		time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC))
	seedOrder(t, db, "2025-0002-0601", "2025-0601-0002", tenantID, uuid.New(),
		time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	seedOrder(t, db, "2025-0003-0602", "2025-0602-0003", tenantID, uuid.New(),
		time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	page, err := repo.ListTenantOrders(ctx, tenantID, pagination.Params{}, OrderFilters{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "2025-0002-0601", page.Orders[0].ID)

	// Lower bound is inclusive, upper bound exclusive.
	lower := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	upper := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	page, err = repo.ListTenantOrders(ctx, tenantID, pagination.Params{}, OrderFilters{
		CreatedFrom: &lower,
		CreatedTo:   &upper,
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "2025-0002-0601", page.Orders[0].ID)

	openEnded, err := repo.ListTenantOrders(ctx, tenantID, pagination.Params{}, OrderFilters{
		CreatedFrom: &from,
	})
	require.NoError(t, err)
	assert.Len(t, openEnded.Orders, 2)
}

func TestListCustomerOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	seedOrder(t, db, "2025-0001-0601", "2025-0601-0001", uuid.New(), customerID, base)
	seedOrder(t, db, "2025-0002-0601", "2025-0601-0002", uuid.New(), uuid.New(), base.Add(time.Minute))

	page, err := repo.ListCustomerOrders(ctx, customerID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "2025-0001-0601", page.Orders[0].ID)
}

func TestUpdateOrderStampsFields(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "2025-1234-0601", "2025-0601-0001", uuid.New(), uuid.New(), time.Now().UTC())

	shippedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	err := repo.UpdateOrder(ctx, "2025-1234-0601", map[string]any{
		"status":     enums.OrderStatusShipped,
		"shipped_at": shippedAt,
	})
	require.NoError(t, err)

	found, err := repo.FindOrderByID(ctx, "2025-1234-0601")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)
	require.NotNil(t, found.ShippedAt)
	assert.True(t, shippedAt.Equal(found.ShippedAt.UTC()))
}
