package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/api/middleware"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
)

func actorUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

func actorTenantID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.TenantIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant scope required")
	}
	return id, nil
}

func actorRole(r *http.Request) enums.MemberRole {
	return enums.MemberRole(middleware.RoleFromContext(r.Context()))
}
