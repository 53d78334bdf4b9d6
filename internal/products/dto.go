package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// CreateProductInput carries a new catalog entry.
type CreateProductInput struct {
	TenantID       uuid.UUID
	SKU            string
	Name           string
	Description    *string
	UnitPriceCents int
	TaxRateBps     int
	StockQty       int
}

// UpdateProductInput carries a partial catalog edit. Nil fields are untouched.
type UpdateProductInput struct {
	TenantID       uuid.UUID
	ProductID      uuid.UUID
	Name           *string
	Description    *string
	UnitPriceCents *int
	TaxRateBps     *int
	StockQty       *int
	Status         *enums.ProductStatus
}

// ProductResponse is the API shape of a catalog entry.
type ProductResponse struct {
	ID             uuid.UUID           `json:"id"`
	TenantID       uuid.UUID           `json:"tenant_id"`
	SKU            string              `json:"sku"`
	Name           string              `json:"name"`
	Description    *string             `json:"description,omitempty"`
	UnitPriceCents int                 `json:"unit_price_cents"`
	TaxRateBps     int                 `json:"tax_rate_bps"`
	StockQty       int                 `json:"stock_qty"`
	Status         enums.ProductStatus `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NewProductResponse maps a model onto its API shape.
func NewProductResponse(product models.Product) ProductResponse {
	return ProductResponse{
		ID:             product.ID,
		TenantID:       product.TenantID,
		SKU:            product.SKU,
		Name:           product.Name,
		Description:    product.Description,
		UnitPriceCents: product.UnitPriceCents,
		TaxRateBps:     product.TaxRateBps,
		StockQty:       product.StockQty,
		Status:         product.Status,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}
