package tenants

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines tenant and membership management operations.
type Service interface {
	CreateTenant(ctx context.Context, input CreateTenantInput) (*models.Tenant, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, input UpdateTenantInput) (*models.Tenant, error)
	AddMember(ctx context.Context, input AddMemberInput) (*models.Membership, error)
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error)
	ResolveRole(ctx context.Context, tenantID, userID uuid.UUID) (enums.MemberRole, error)
}

// CreateTenantInput provisions a new storefront and its owner membership.
type CreateTenantInput struct {
	Name    string
	Slug    string
	Email   string
	Phone   *string
	OwnerID uuid.UUID
}

// UpdateTenantInput carries a partial tenant edit. Nil fields are untouched.
type UpdateTenantInput struct {
	TenantID uuid.UUID
	Name     *string
	Email    *string
	Phone    *string
	Status   *enums.TenantStatus
}

// AddMemberInput attaches a user to a tenant with a role.
type AddMemberInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     enums.MemberRole
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds a tenants service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// CreateTenant provisions the tenant row and the owner membership atomically.
func (s *service) CreateTenant(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if name == "" || slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	tenant := &models.Tenant{
		Name:    name,
		Slug:    slug,
		Email:   strings.TrimSpace(input.Email),
		Phone:   input.Phone,
		Status:  enums.TenantStatusActive,
		OwnerID: input.OwnerID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateTenant(ctx, tenant); err != nil {
			if db.IsUniqueViolation(err, "uq_tenants_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
		}
		_, err := repo.CreateMembership(ctx, &models.Membership{
			TenantID: tenant.ID,
			UserID:   input.OwnerID,
			Role:     enums.MemberRoleOwner,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithTenantID(ctx, tenant.ID.String()), "tenant created")
	return tenant, nil
}

func (s *service) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	tenant, err := s.repo.FindTenantByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	return tenant, nil
}

func (s *service) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	tenant, err := s.repo.FindTenantBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	return tenant, nil
}

func (s *service) UpdateTenant(ctx context.Context, input UpdateTenantInput) (*models.Tenant, error) {
	tenant, err := s.GetTenant(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tenant status")
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return tenant, nil
	}

	if err := s.repo.UpdateTenant(ctx, tenant.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant")
	}
	return s.GetTenant(ctx, tenant.ID)
}

func (s *service) AddMember(ctx context.Context, input AddMemberInput) (*models.Membership, error) {
	if input.TenantID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and user id required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ownership is assigned at tenant creation")
	}

	membership := &models.Membership{
		TenantID: input.TenantID,
		UserID:   input.UserID,
		Role:     input.Role,
	}
	created, err := s.repo.CreateMembership(ctx, membership)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_memberships_tenant_user") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}
	return created, nil
}

func (s *service) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	rows, err := s.repo.ListMemberships(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}
	return rows, nil
}

// ResolveRole returns the caller's role within a tenant, defaulting to
// customer when no staff membership exists.
func (s *service) ResolveRole(ctx context.Context, tenantID, userID uuid.UUID) (enums.MemberRole, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "tenant id and user id required")
	}
	membership, err := s.repo.FindMembership(ctx, tenantID, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if membership == nil {
		return enums.MemberRoleCustomer, nil
	}
	return membership.Role, nil
}
