package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders  map[string]*models.Order
	updates map[string]map[string]any
}

func newStubOrdersRepo(orders ...*models.Order) *stubOrdersRepo {
	repo := &stubOrdersRepo{
		orders:  map[string]*models.Order{},
		updates: map[string]map[string]any{},
	}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (s *stubOrdersRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindOrderByID(_ context.Context, id string) (*models.Order, error) {
	return s.orders[id], nil
}

func (s *stubOrdersRepo) FindOrderByNumber(_ context.Context, number string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == number {
			return order, nil
		}
	}
	return nil, nil
}

func (s *stubOrdersRepo) FindMostRecentOrder(_ context.Context) (*models.Order, error) {
	var recent *models.Order
	for _, order := range s.orders {
		if recent == nil || order.CreatedAt.After(recent.CreatedAt) {
			recent = order
		}
	}
	return recent, nil
}

func (s *stubOrdersRepo) FindOrderDetail(_ context.Context, id string) (*models.Order, error) {
	return s.orders[id], nil
}

func (s *stubOrdersRepo) ListTenantOrders(_ context.Context, tenantID uuid.UUID, _ pagination.Params, _ OrderFilters) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if order.TenantID == tenantID {
			list.Orders = append(list.Orders, *order)
		}
	}
	return list, nil
}

func (s *stubOrdersRepo) ListCustomerOrders(_ context.Context, customerID uuid.UUID, _ pagination.Params) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			list.Orders = append(list.Orders, *order)
		}
	}
	return list, nil
}

func (s *stubOrdersRepo) UpdateOrder(_ context.Context, id string, updates map[string]any) error {
	s.updates[id] = updates
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTx{}, testLogger())
	require.NoError(t, err)
	return svc
}

func pendingOrder(id string) *models.Order {
	return &models.Order{
		ID:            id,
		OrderNumber:   "2025-0601-0001",
		TenantID:      uuid.New(),
		CustomerID:    uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
}

func TestConfirmFromPending(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	err := svc.Confirm(context.Background(), TransitionInput{OrderID: order.ID, TenantID: order.TenantID})
	require.NoError(t, err)

	updates := repo.updates[order.ID]
	require.NotNil(t, updates)
	assert.Equal(t, enums.OrderStatusConfirmed, updates["status"])
	assert.Contains(t, updates, "confirmed_at")
}

func TestConfirmAlreadyConfirmedIsNoOp(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.Status = enums.OrderStatusConfirmed
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.Confirm(context.Background(), TransitionInput{OrderID: order.ID}))
	assert.Empty(t, repo.updates)
}

func TestConfirmFromShippedConflicts(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.Status = enums.OrderStatusShipped
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	err := svc.Confirm(context.Background(), TransitionInput{OrderID: order.ID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestConfirmDoesNotRestampTimestamp(t *testing.T) {
	// A previously confirmed-then-reopened order keeps its original timestamp.
	confirmedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	order := pendingOrder("2025-1111-0601")
	order.ConfirmedAt = &confirmedAt
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.Confirm(context.Background(), TransitionInput{OrderID: order.ID}))
	updates := repo.updates[order.ID]
	require.NotNil(t, updates)
	assert.NotContains(t, updates, "confirmed_at")
}

func TestMarkShippedRequiresConfirmed(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	err := svc.MarkShipped(context.Background(), TransitionInput{OrderID: order.ID})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	order.Status = enums.OrderStatusConfirmed
	require.NoError(t, svc.MarkShipped(context.Background(), TransitionInput{OrderID: order.ID}))
	updates := repo.updates[order.ID]
	assert.Equal(t, enums.OrderStatusShipped, updates["status"])
	assert.Contains(t, updates, "shipped_at")
}

func TestMarkDeliveredFulfills(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.Status = enums.OrderStatusShipped
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.MarkDelivered(context.Background(), TransitionInput{OrderID: order.ID}))
	updates := repo.updates[order.ID]
	assert.Equal(t, enums.OrderStatusDelivered, updates["status"])
	assert.Equal(t, enums.FulfillmentStatusFulfilled, updates["fulfillment_status"])
	assert.Contains(t, updates, "delivered_at")
}

func TestCancelFromNonTerminal(t *testing.T) {
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusShipped,
	} {
		order := pendingOrder("2025-1111-0601")
		order.Status = status
		repo := newStubOrdersRepo(order)
		svc := newTestService(t, repo)

		require.NoError(t, svc.Cancel(context.Background(), TransitionInput{OrderID: order.ID}), "status %s", status)
		assert.Equal(t, enums.OrderStatusCancelled, repo.updates[order.ID]["status"])
	}
}

func TestCancelFromDeliveredConflicts(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.Status = enums.OrderStatusDelivered
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	err := svc.Cancel(context.Background(), TransitionInput{OrderID: order.ID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelAlreadyCancelledIsNoOp(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.Status = enums.OrderStatusCancelled
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.Cancel(context.Background(), TransitionInput{OrderID: order.ID}))
	assert.Empty(t, repo.updates)
}

func TestTransitionTenantScope(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	err := svc.Confirm(context.Background(), TransitionInput{OrderID: order.ID, TenantID: uuid.New()})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo())

	err := svc.Confirm(context.Background(), TransitionInput{OrderID: "2025-0000-0101"})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestApplyPaymentSucceededConfirmsPendingOrder(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.ApplyPaymentSucceeded(context.Background(), order.ID))
	updates := repo.updates[order.ID]
	assert.Equal(t, enums.PaymentStatusCompleted, updates["payment_status"])
	assert.Equal(t, enums.OrderStatusConfirmed, updates["status"])
	assert.Contains(t, updates, "confirmed_at")
}

func TestApplyPaymentSucceededLeavesAdvancedStatus(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.Status = enums.OrderStatusShipped
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.ApplyPaymentSucceeded(context.Background(), order.ID))
	updates := repo.updates[order.ID]
	assert.Equal(t, enums.PaymentStatusCompleted, updates["payment_status"])
	assert.NotContains(t, updates, "status")
}

func TestApplyPaymentSucceededReplayIsNoOp(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.PaymentStatus = enums.PaymentStatusCompleted
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.ApplyPaymentSucceeded(context.Background(), order.ID))
	assert.Empty(t, repo.updates)
}

func TestApplyPaymentFailed(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.ApplyPaymentFailed(context.Background(), order.ID))
	assert.Equal(t, enums.PaymentStatusFailed, repo.updates[order.ID]["payment_status"])
}

func TestApplyPaymentFailedAfterCompletionIsNoOp(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	order.PaymentStatus = enums.PaymentStatusCompleted
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	require.NoError(t, svc.ApplyPaymentFailed(context.Background(), order.ID))
	assert.Empty(t, repo.updates)
}

func TestGetOrderCustomerScope(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	_, err := svc.GetOrder(context.Background(), GetOrderInput{
		OrderID:     order.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.MemberRoleCustomer,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	got, err := svc.GetOrder(context.Background(), GetOrderInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.MemberRoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestGetOrderStaffTenantScope(t *testing.T) {
	order := pendingOrder("2025-1111-0601")
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo)

	_, err := svc.GetOrder(context.Background(), GetOrderInput{
		OrderID:   order.ID,
		TenantID:  uuid.New(),
		ActorRole: enums.MemberRoleStaff,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	got, err := svc.GetOrder(context.Background(), GetOrderInput{
		OrderID:   order.ID,
		TenantID:  order.TenantID,
		ActorRole: enums.MemberRoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo())

	_, err := svc.GetOrder(context.Background(), GetOrderInput{OrderID: "2025-0000-0101"})
	assertCode(t, err, pkgerrors.CodeNotFound)
}
