package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// Product is a sellable catalog entry owned by a tenant.
type Product struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_products_tenant_sku"`
	SKU            string              `gorm:"column:sku;not null;uniqueIndex:idx_products_tenant_sku"`
	Name           string              `gorm:"column:name;not null"`
	Description    *string             `gorm:"column:description"`
	UnitPriceCents int                 `gorm:"column:unit_price_cents;not null"`
	TaxRateBps     int                 `gorm:"column:tax_rate_bps;not null;default:0"`
	StockQty       int                 `gorm:"column:stock_qty;not null;default:0"`
	Status         enums.ProductStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
