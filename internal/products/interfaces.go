package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Product, error)
	ListTenantProducts(ctx context.Context, tenantID uuid.UUID, filters ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// ProductFilters narrows catalog listings.
type ProductFilters struct {
	Status *enums.ProductStatus
}
