package tenants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
)

// Repository defines persistence operations for tenants and memberships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTenant(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)
	FindTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateMembership(ctx context.Context, membership *models.Membership) (*models.Membership, error)
	FindMembership(ctx context.Context, tenantID, userID uuid.UUID) (*models.Membership, error)
	ListMemberships(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error)
	UpdateMembershipRole(ctx context.Context, membershipID uuid.UUID, role string) error
	DeleteMembership(ctx context.Context, membershipID uuid.UUID) error
}
