package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	GetOrder(ctx context.Context, input GetOrderInput) (*models.Order, error)
	ListForTenant(ctx context.Context, input ListTenantOrdersInput) (*OrderList, error)
	ListForCustomer(ctx context.Context, input ListCustomerOrdersInput) (*OrderList, error)
	Confirm(ctx context.Context, input TransitionInput) error
	MarkShipped(ctx context.Context, input TransitionInput) error
	MarkDelivered(ctx context.Context, input TransitionInput) error
	Cancel(ctx context.Context, input TransitionInput) error
	ApplyPaymentSucceeded(ctx context.Context, orderID string) error
	ApplyPaymentFailed(ctx context.Context, orderID string) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// GetOrderInput scopes a detail read to the requesting actor.
type GetOrderInput struct {
	OrderID     string
	TenantID    uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.MemberRole
}

// ListTenantOrdersInput lists a tenant's orders for staff dashboards.
type ListTenantOrdersInput struct {
	TenantID   uuid.UUID
	Pagination pagination.Params
	Filters    OrderFilters
}

// ListCustomerOrdersInput lists the requesting customer's own orders.
type ListCustomerOrdersInput struct {
	CustomerID uuid.UUID
	Pagination pagination.Params
}

// TransitionInput carries a staff-driven status change request.
type TransitionInput struct {
	OrderID  string
	TenantID uuid.UUID
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		logg: logg,
		now:  time.Now,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, input GetOrderInput) (*models.Order, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrderDetail(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	// Customers may only read their own orders; staff are scoped to their tenant.
	if input.ActorRole == enums.MemberRoleCustomer {
		if order.CustomerID != input.ActorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
	} else if input.TenantID != uuid.Nil && order.TenantID != input.TenantID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to tenant")
	}
	return order, nil
}

func (s *service) ListForTenant(ctx context.Context, input ListTenantOrdersInput) (*OrderList, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	list, err := s.repo.ListTenantOrders(ctx, input.TenantID, input.Pagination, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenant orders")
	}
	return list, nil
}

func (s *service) ListForCustomer(ctx context.Context, input ListCustomerOrdersInput) (*OrderList, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	list, err := s.repo.ListCustomerOrders(ctx, input.CustomerID, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return list, nil
}

// Confirm moves a pending order to confirmed. Used for flows where payment
// settles outside the provider webhook, e.g. cash on delivery.
func (s *service) Confirm(ctx context.Context, input TransitionInput) error {
	return s.transition(ctx, input, func(order *models.Order, now time.Time) (map[string]any, error) {
		if order.Status == enums.OrderStatusConfirmed {
			return nil, nil
		}
		if order.Status != enums.OrderStatusPending {
			return nil, transitionConflict(order.Status, enums.OrderStatusConfirmed)
		}
		updates := map[string]any{"status": enums.OrderStatusConfirmed}
		if order.ConfirmedAt == nil {
			updates["confirmed_at"] = now
		}
		return updates, nil
	})
}

func (s *service) MarkShipped(ctx context.Context, input TransitionInput) error {
	return s.transition(ctx, input, func(order *models.Order, now time.Time) (map[string]any, error) {
		if order.Status == enums.OrderStatusShipped {
			return nil, nil
		}
		if order.Status != enums.OrderStatusConfirmed {
			return nil, transitionConflict(order.Status, enums.OrderStatusShipped)
		}
		updates := map[string]any{"status": enums.OrderStatusShipped}
		if order.ShippedAt == nil {
			updates["shipped_at"] = now
		}
		return updates, nil
	})
}

func (s *service) MarkDelivered(ctx context.Context, input TransitionInput) error {
	return s.transition(ctx, input, func(order *models.Order, now time.Time) (map[string]any, error) {
		if order.Status == enums.OrderStatusDelivered {
			return nil, nil
		}
		if order.Status != enums.OrderStatusShipped {
			return nil, transitionConflict(order.Status, enums.OrderStatusDelivered)
		}
		updates := map[string]any{
			"status":             enums.OrderStatusDelivered,
			"fulfillment_status": enums.FulfillmentStatusFulfilled,
		}
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
		return updates, nil
	})
}

// Cancel is reachable from any non-terminal status.
func (s *service) Cancel(ctx context.Context, input TransitionInput) error {
	return s.transition(ctx, input, func(order *models.Order, now time.Time) (map[string]any, error) {
		if order.Status == enums.OrderStatusCancelled {
			return nil, nil
		}
		if order.Status.IsTerminal() {
			return nil, transitionConflict(order.Status, enums.OrderStatusCancelled)
		}
		updates := map[string]any{"status": enums.OrderStatusCancelled}
		if order.CancelledAt == nil {
			updates["cancelled_at"] = now
		}
		return updates, nil
	})
}

// ApplyPaymentSucceeded marks payment completed and confirms the order when it
// is still pending. Replayed webhook deliveries land here as no-ops.
func (s *service) ApplyPaymentSucceeded(ctx context.Context, orderID string) error {
	return s.transition(ctx, TransitionInput{OrderID: orderID}, func(order *models.Order, now time.Time) (map[string]any, error) {
		if order.PaymentStatus == enums.PaymentStatusCompleted {
			return nil, nil
		}
		updates := map[string]any{"payment_status": enums.PaymentStatusCompleted}
		if order.Status == enums.OrderStatusPending {
			updates["status"] = enums.OrderStatusConfirmed
			if order.ConfirmedAt == nil {
				updates["confirmed_at"] = now
			}
		}
		return updates, nil
	})
}

// ApplyPaymentFailed records the failure; order status is left for staff to
// resolve manually.
func (s *service) ApplyPaymentFailed(ctx context.Context, orderID string) error {
	return s.transition(ctx, TransitionInput{OrderID: orderID}, func(order *models.Order, _ time.Time) (map[string]any, error) {
		if order.PaymentStatus != enums.PaymentStatusPending {
			return nil, nil
		}
		return map[string]any{"payment_status": enums.PaymentStatusFailed}, nil
	})
}

type transitionFn func(order *models.Order, now time.Time) (map[string]any, error)

func (s *service) transition(ctx context.Context, input TransitionInput, fn transitionFn) error {
	if input.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if input.TenantID != uuid.Nil && order.TenantID != input.TenantID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to tenant")
		}

		updates, err := fn(order, s.now().UTC())
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID,
			"updates":  updateKeys(updates),
		}), "order transition applied")
		return nil
	})
}

func transitionConflict(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move order from %s to %s", from, to)).
		WithDetails(map[string]string{"from": string(from), "to": string(to)})
}

func updateKeys(updates map[string]any) []string {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	return keys
}
