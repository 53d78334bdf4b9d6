package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/api/responses"
	"github.com/adriancampa/storeloom-backend/api/validators"
	"github.com/adriancampa/storeloom-backend/internal/auth"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	TenantSlug string `json:"tenant_slug,omitempty" validate:"omitempty,max=100"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	Token    string           `json:"token"`
	User     userResponse     `json:"user"`
	TenantID *uuid.UUID       `json:"tenant_id,omitempty"`
	Role     enums.MemberRole `json:"role"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), auth.RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: validators.SanitizeString(req.FirstName, 100),
			LastName:  validators.SanitizeString(req.LastName, 100),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newUserResponse(user))
	}
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), auth.LoginInput{
			Email:      req.Email,
			Password:   req.Password,
			TenantSlug: req.TenantSlug,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionResponse{
			Token:    session.Token,
			User:     newUserResponse(session.User),
			TenantID: session.TenantID,
			Role:     session.Role,
		})
	}
}

func AuthProfile(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Profile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newUserResponse(user))
	}
}
