package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// Order represents one checkout transaction.
//
// ID is the human-readable time-derived identifier (YYYY-XXXX-MMDD) and
// OrderNumber the sequential label (YYYY-MMDD-XXXX). Both are globally unique
// across all tenants; the unique constraints here are the final backstop for
// the generator's optimistic pre-checks.
type Order struct {
	ID                string                  `gorm:"column:id;primaryKey"`
	OrderNumber       string                  `gorm:"column:order_number;not null;uniqueIndex"`
	TenantID          uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;index"`
	CustomerID        uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	Currency          enums.Currency          `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status            enums.OrderStatus       `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'unfulfilled'"`
	SubtotalCents     int                     `gorm:"column:subtotal_cents;not null"`
	TaxCents          int                     `gorm:"column:tax_cents;not null;default:0"`
	ShippingCents     int                     `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents        int                     `gorm:"column:total_cents;not null"`
	Notes             *string                 `gorm:"column:notes"`
	ConfirmedAt       *time.Time              `gorm:"column:confirmed_at"`
	ShippedAt         *time.Time              `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time              `gorm:"column:delivered_at"`
	CancelledAt       *time.Time              `gorm:"column:cancelled_at"`
	Items             []OrderItem             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
