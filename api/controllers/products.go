package controllers

import (
	"net/http"
	"strings"

	"github.com/adriancampa/storeloom-backend/api/responses"
	"github.com/adriancampa/storeloom-backend/api/validators"
	"github.com/adriancampa/storeloom-backend/internal/products"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type createProductRequest struct {
	SKU            string  `json:"sku" validate:"required,max=100"`
	Name           string  `json:"name" validate:"required,max=200"`
	Description    *string `json:"description,omitempty"`
	UnitPriceCents int     `json:"unit_price_cents" validate:"min=0"`
	TaxRateBps     int     `json:"tax_rate_bps" validate:"min=0,max=10000"`
	StockQty       int     `json:"stock_qty" validate:"min=0"`
}

type updateProductRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description    *string `json:"description,omitempty"`
	UnitPriceCents *int    `json:"unit_price_cents,omitempty" validate:"omitempty,min=0"`
	TaxRateBps     *int    `json:"tax_rate_bps,omitempty" validate:"omitempty,min=0,max=10000"`
	StockQty       *int    `json:"stock_qty,omitempty" validate:"omitempty,min=0"`
	Status         *string `json:"status,omitempty"`
}

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateProductInput{
			TenantID:       tenantID,
			SKU:            validators.SanitizeString(req.SKU, 100),
			Name:           validators.SanitizeString(req.Name, 200),
			Description:    req.Description,
			UnitPriceCents: req.UnitPriceCents,
			TaxRateBps:     req.TaxRateBps,
			StockQty:       req.StockQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, products.NewProductResponse(*product))
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateProductInput{
			TenantID:       tenantID,
			ProductID:      productID,
			Name:           req.Name,
			Description:    req.Description,
			UnitPriceCents: req.UnitPriceCents,
			TaxRateBps:     req.TaxRateBps,
			StockQty:       req.StockQty,
		}
		if req.Status != nil {
			status := enums.ProductStatus(*req.Status)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status"))
				return
			}
			input.Status = &status
		}

		product, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.NewProductResponse(*product))
	}
}

func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), tenantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.NewProductResponse(*product))
	}
}

func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters products.ProductFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.ProductStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), tenantID, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]products.ProductResponse, 0, len(list))
		for _, product := range list {
			resp = append(resp, products.NewProductResponse(product))
		}
		responses.WriteSuccess(w, resp)
	}
}
