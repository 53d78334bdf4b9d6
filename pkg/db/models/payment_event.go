package models

import (
	"time"
)

// PaymentEvent records every processed payment-provider webhook delivery.
// The unique provider event id makes replayed deliveries observable no-ops.
type PaymentEvent struct {
	ID             string    `gorm:"column:id;primaryKey"`
	OrderID        string    `gorm:"column:order_id;not null;index"`
	Type           string    `gorm:"column:type;not null"`
	RawAmountCents int       `gorm:"column:raw_amount_cents;not null;default:0"`
	ProcessedAt    time.Time `gorm:"column:processed_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
