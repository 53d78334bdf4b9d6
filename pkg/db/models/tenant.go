package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// Tenant is one independently-branded storefront sharing the platform.
type Tenant struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Slug      string             `gorm:"column:slug;not null;uniqueIndex"`
	Email     string             `gorm:"column:email;not null"`
	Phone     *string            `gorm:"column:phone"`
	Status    enums.TenantStatus `gorm:"column:status;type:text;not null;default:'active'"`
	OwnerID   uuid.UUID          `gorm:"column:owner_id;type:uuid;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
