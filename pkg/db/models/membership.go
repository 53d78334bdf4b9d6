package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// Membership links a user to a tenant with a role.
type Membership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_memberships_tenant_user"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_memberships_tenant_user"`
	Role      enums.MemberRole `gorm:"column:role;type:text;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
