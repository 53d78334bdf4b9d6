package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/api/middleware"
	"github.com/adriancampa/storeloom-backend/api/responses"
	"github.com/adriancampa/storeloom-backend/api/validators"
	"github.com/adriancampa/storeloom-backend/internal/exports"
	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

// List returns a page of the tenant's orders for staff dashboards.
func List(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForTenant(r.Context(), orders.ListTenantOrdersInput{
			TenantID:   tenantID,
			Pagination: params,
			Filters:    filters,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewOrderListResponse(list))
	}
}

// ListMine returns the requesting customer's own orders.
func ListMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForCustomer(r.Context(), orders.ListCustomerOrdersInput{
			CustomerID: customerID,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewOrderListResponse(list))
	}
}

// Detail returns one order with its line items.
func Detail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.GetOrderInput{
			OrderID:     chi.URLParam(r, "orderId"),
			ActorUserID: userID,
			ActorRole:   enums.MemberRole(middleware.RoleFromContext(r.Context())),
		}
		if tenantID, err := uuid.Parse(middleware.TenantIDFromContext(r.Context())); err == nil {
			input.TenantID = tenantID
		}

		order, err := svc.GetOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewOrderResponse(*order))
	}
}

// Confirm moves a pending order to confirmed. Used by cash-on-delivery flows
// where no payment webhook will arrive.
func Confirm(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(func(ctx context.Context, input orders.TransitionInput) error {
		return svc.Confirm(ctx, input)
	}, logg)
}

func Ship(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(func(ctx context.Context, input orders.TransitionInput) error {
		return svc.MarkShipped(ctx, input)
	}, logg)
}

func Deliver(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(func(ctx context.Context, input orders.TransitionInput) error {
		return svc.MarkDelivered(ctx, input)
	}, logg)
}

func Cancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(func(ctx context.Context, input orders.TransitionInput) error {
		return svc.Cancel(ctx, input)
	}, logg)
}

// ExportCSV streams the tenant's order history as a CSV download.
func ExportCSV(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := svc.WriteOrdersCSV(r.Context(), w, tenantID, filters); err != nil {
			// Headers may already be on the wire; log instead of rewriting status.
			if logg != nil {
				logg.Error(r.Context(), "orders csv export", err)
			}
		}
	}
}

func transition(apply func(ctx context.Context, input orders.TransitionInput) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := actorTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.TransitionInput{
			OrderID:  chi.URLParam(r, "orderId"),
			TenantID: tenantID,
		}
		if err := apply(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"order_id": input.OrderID})
	}
}

func parseFilters(r *http.Request) (orders.OrderFilters, error) {
	var filters orders.OrderFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, _, err := parseTimeParam(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from filter")
		}
		filters.CreatedFrom = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, dateOnly, err := parseTimeParam(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to filter")
		}
		// The upper bound is exclusive; a date-only value covers that whole day.
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
		filters.CreatedTo = &to
	}
	return filters, nil
}

func parseTimeParam(raw string) (time.Time, bool, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), false, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts.UTC(), true, nil
}

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
