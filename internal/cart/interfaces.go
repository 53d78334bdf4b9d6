package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// Repository defines persistence operations for carts and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCart(ctx context.Context, cart *models.CartRecord) (*models.CartRecord, error)
	FindActiveCart(ctx context.Context, tenantID, customerID uuid.UUID) (*models.CartRecord, error)
	FindCartWithItems(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQty(ctx context.Context, cartID, productID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	UpdateCartStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error
}
