package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
)

// OrderItemResponse is the API shape of one order line item.
type OrderItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	LineTotalCents int        `json:"line_total_cents"`
}

// OrderResponse is the API shape of an order.
type OrderResponse struct {
	ID                string                  `json:"id"`
	OrderNumber       string                  `json:"order_number"`
	TenantID          uuid.UUID               `json:"tenant_id"`
	CustomerID        uuid.UUID               `json:"customer_id"`
	Currency          enums.Currency          `json:"currency"`
	Status            enums.OrderStatus       `json:"status"`
	PaymentStatus     enums.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillment_status"`
	SubtotalCents     int                     `json:"subtotal_cents"`
	TaxCents          int                     `json:"tax_cents"`
	ShippingCents     int                     `json:"shipping_cents"`
	TotalCents        int                     `json:"total_cents"`
	Notes             *string                 `json:"notes,omitempty"`
	Items             []OrderItemResponse     `json:"items,omitempty"`
	ConfirmedAt       *time.Time              `json:"confirmed_at,omitempty"`
	ShippedAt         *time.Time              `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time              `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// OrderListResponse is one page of orders.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewOrderResponse maps a model onto its API shape.
func NewOrderResponse(order models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			SKU:            item.SKU,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return OrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		TenantID:          order.TenantID,
		CustomerID:        order.CustomerID,
		Currency:          order.Currency,
		Status:            order.Status,
		PaymentStatus:     order.PaymentStatus,
		FulfillmentStatus: order.FulfillmentStatus,
		SubtotalCents:     order.SubtotalCents,
		TaxCents:          order.TaxCents,
		ShippingCents:     order.ShippingCents,
		TotalCents:        order.TotalCents,
		Notes:             order.Notes,
		Items:             items,
		ConfirmedAt:       order.ConfirmedAt,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
		CancelledAt:       order.CancelledAt,
		CreatedAt:         order.CreatedAt,
	}
}

// NewOrderListResponse maps a repository page onto its API shape.
func NewOrderListResponse(list *OrderList) OrderListResponse {
	resp := OrderListResponse{Orders: make([]OrderResponse, 0, len(list.Orders))}
	for _, order := range list.Orders {
		resp.Orders = append(resp.Orders, NewOrderResponse(order))
	}
	resp.NextCursor = list.NextCursor
	return resp
}
