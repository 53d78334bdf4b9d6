package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

// ordersCSVHeader is the column layout of the analytics export.
var ordersCSVHeader = []string{
	"order_id", "order_number", "created_at",
	"status", "payment_status", "fulfillment_status",
	"currency", "subtotal", "tax", "shipping", "total", "item_count",
}

// exportPageSize keeps memory flat while streaming large tenants.
const exportPageSize = pagination.MaxLimit

// Service streams order history exports for a tenant.
type Service interface {
	WriteOrdersCSV(ctx context.Context, w io.Writer, tenantID uuid.UUID, filters orders.OrderFilters) error
}

type service struct {
	repo orders.Repository
}

// NewService builds an exports service with the required dependencies.
func NewService(repo orders.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// WriteOrdersCSV streams the tenant's order history page by page. Monetary
// columns are rendered as decimal major units so spreadsheets read them as
// numbers, not cents.
func (s *service) WriteOrdersCSV(ctx context.Context, w io.Writer, tenantID uuid.UUID, filters orders.OrderFilters) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ordersCSVHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	cursor := ""
	for {
		page, err := s.repo.ListTenantOrders(ctx, tenantID, pagination.Params{
			Limit:  exportPageSize,
			Cursor: cursor,
		}, filters)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders for export")
		}

		for _, order := range page.Orders {
			if err := writer.Write(orderCSVRow(order)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
			}
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func orderCSVRow(order models.Order) []string {
	return []string{
		order.ID,
		order.OrderNumber,
		order.CreatedAt.UTC().Format(time.RFC3339),
		string(order.Status),
		string(order.PaymentStatus),
		string(order.FulfillmentStatus),
		string(order.Currency),
		centsToMajor(order.SubtotalCents),
		centsToMajor(order.TaxCents),
		centsToMajor(order.ShippingCents),
		centsToMajor(order.TotalCents),
		strconv.Itoa(len(order.Items)),
	}
}

func centsToMajor(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}
