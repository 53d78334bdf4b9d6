package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders tables. The three
// Find* lookups return (nil, nil) on a miss so they double as the existence
// checks used during identifier generation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrderByID(ctx context.Context, id string) (*models.Order, error)
	FindOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindMostRecentOrder(ctx context.Context) (*models.Order, error)
	FindOrderDetail(ctx context.Context, id string) (*models.Order, error)
	ListTenantOrders(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderList, error)
	UpdateOrder(ctx context.Context, id string, updates map[string]any) error
}

// OrderFilters narrows tenant order listings. CreatedFrom is inclusive,
// CreatedTo exclusive.
type OrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}
