package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// CartRecord is the per-customer-per-tenant cart container.
type CartRecord struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	CustomerID uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Status     enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table name short; the Go type avoids clashing with the
// cart package name.
func (CartRecord) TableName() string {
	return "carts"
}
