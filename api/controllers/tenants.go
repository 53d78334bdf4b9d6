package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/api/responses"
	"github.com/adriancampa/storeloom-backend/api/validators"
	"github.com/adriancampa/storeloom-backend/internal/tenants"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type createTenantRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Slug  string  `json:"slug" validate:"required,max=100"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type updateTenantRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Status *string `json:"status,omitempty"`
}

type addMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required"`
}

type tenantResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug"`
	Email     string             `json:"email"`
	Phone     *string            `json:"phone,omitempty"`
	Status    enums.TenantStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type membershipResponse struct {
	ID       uuid.UUID        `json:"id"`
	TenantID uuid.UUID        `json:"tenant_id"`
	UserID   uuid.UUID        `json:"user_id"`
	Role     enums.MemberRole `json:"role"`
}

func newTenantResponse(tenant *models.Tenant) tenantResponse {
	return tenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		Email:     tenant.Email,
		Phone:     tenant.Phone,
		Status:    tenant.Status,
		CreatedAt: tenant.CreatedAt,
	}
}

func newMembershipResponse(membership models.Membership) membershipResponse {
	return membershipResponse{
		ID:       membership.ID,
		TenantID: membership.TenantID,
		UserID:   membership.UserID,
		Role:     membership.Role,
	}
}

func TenantCreate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createTenantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.CreateTenant(r.Context(), tenants.CreateTenantInput{
			Name:    validators.SanitizeString(req.Name, 200),
			Slug:    validators.SanitizeString(req.Slug, 100),
			Email:   req.Email,
			Phone:   req.Phone,
			OwnerID: ownerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTenantResponse(tenant))
	}
}

func TenantProfile(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.GetTenant(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTenantResponse(tenant))
	}
}

func TenantUpdate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateTenantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tenants.UpdateTenantInput{
			TenantID: tenantID,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
		}
		if req.Status != nil {
			status := enums.TenantStatus(*req.Status)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid tenant status"))
				return
			}
			input.Status = &status
		}

		tenant, err := svc.UpdateTenant(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTenantResponse(tenant))
	}
}

func TenantMembers(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.ListMembers(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]membershipResponse, 0, len(members))
		for _, member := range members {
			resp = append(resp, newMembershipResponse(member))
		}
		responses.WriteSuccess(w, resp)
	}
}

func TenantAddMember(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addMemberRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseMemberRole(req.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		membership, err := svc.AddMember(r.Context(), tenants.AddMemberInput{
			TenantID: tenantID,
			UserID:   req.UserID,
			Role:     role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newMembershipResponse(*membership))
	}
}
