package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the line item snapshot within an order. Name and SKU are
// copied from the product so historical orders stay readable after catalog
// edits or deletes. Items are created atomically with their parent order and
// never mutated independently.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        string     `gorm:"column:order_id;not null;index"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	SKU            string     `gorm:"column:sku;not null"`
	Name           string     `gorm:"column:name;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	LineTotalCents int        `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
