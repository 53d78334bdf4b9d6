package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a broadcast or direct message row for a tenant's staff.
// Delivery over an external push channel is handled outside this system.
type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	Title     string     `gorm:"column:title;not null"`
	Body      string     `gorm:"column:body;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
