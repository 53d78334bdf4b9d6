package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/api/responses"
	"github.com/adriancampa/storeloom-backend/api/validators"
	"github.com/adriancampa/storeloom-backend/internal/cart"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Qty int `json:"qty" validate:"min=0"`
}

type cartItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
}

type cartResponse struct {
	ID       uuid.UUID          `json:"id"`
	TenantID uuid.UUID          `json:"tenant_id"`
	Status   enums.CartStatus   `json:"status"`
	Items    []cartItemResponse `json:"items"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	items := make([]cartItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, cartItemResponse{
			ProductID:      item.ProductID,
			SKU:            item.ProductSKU,
			Name:           item.ProductName,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
		})
	}
	return cartResponse{
		ID:       record.ID,
		TenantID: record.TenantID,
		Status:   record.Status,
		Items:    items,
	}
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, customerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActiveCart(r.Context(), tenantID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, customerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), cart.AddItemInput{
			TenantID:   tenantID,
			CustomerID: customerID,
			ProductID:  req.ProductID,
			Qty:        req.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, customerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateItemQty(r.Context(), cart.UpdateItemInput{
			TenantID:   tenantID,
			CustomerID: customerID,
			ProductID:  productID,
			Qty:        req.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, customerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), tenantID, customerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func cartScope(r *http.Request) (tenantID, customerID uuid.UUID, err error) {
	tenantID, err = actorTenantID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	customerID, err = actorUserID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, customerID, nil
}
