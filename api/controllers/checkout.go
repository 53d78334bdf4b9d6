package controllers

import (
	"net/http"

	"github.com/adriancampa/storeloom-backend/api/responses"
	"github.com/adriancampa/storeloom-backend/api/validators"
	"github.com/adriancampa/storeloom-backend/internal/checkout"
	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type checkoutRequest struct {
	Currency      string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	ShippingCents int     `json:"shipping_cents" validate:"min=0"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var currency enums.Currency
		if req.Currency != "" {
			currency = enums.Currency(req.Currency)
			if !currency.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency"))
				return
			}
		}

		order, err := svc.Checkout(r.Context(), checkout.CheckoutInput{
			TenantID:      tenantID,
			CustomerID:    customerID,
			Currency:      currency,
			ShippingCents: req.ShippingCents,
			Notes:         req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.NewOrderResponse(*order))
	}
}
