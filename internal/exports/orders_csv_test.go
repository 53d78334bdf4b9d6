package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	"github.com/adriancampa/storeloom-backend/pkg/pagination"
)

type pagedOrdersRepo struct {
	orders.Repository
	pages []orders.OrderList
	calls int
}

func (s *pagedOrdersRepo) ListTenantOrders(_ context.Context, _ uuid.UUID, _ pagination.Params, _ orders.OrderFilters) (*orders.OrderList, error) {
	if s.calls >= len(s.pages) {
		return &orders.OrderList{}, nil
	}
	page := s.pages[s.calls]
	s.calls++
	return &page, nil
}

func (s *pagedOrdersRepo) WithTx(_ *gorm.DB) orders.Repository { return s }

func sampleOrder(n int) models.Order {
	return models.Order{
		ID:                fmt.Sprintf("2025-%04d-0601", n),
		OrderNumber:       fmt.Sprintf("2025-0601-%04d", n),
		Status:            enums.OrderStatusConfirmed,
		PaymentStatus:     enums.PaymentStatusCompleted,
		FulfillmentStatus: enums.FulfillmentStatusUnfulfilled,
		Currency:          enums.CurrencyUSD,
		SubtotalCents:     1333,
		TaxCents:          127,
		ShippingCents:     250,
		TotalCents:        1710,
		Items:             []models.OrderItem{{}, {}},
		CreatedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteOrdersCSV(t *testing.T) {
	repo := &pagedOrdersRepo{pages: []orders.OrderList{
		{Orders: []models.Order{sampleOrder(1), sampleOrder(2)}, NextCursor: "next"},
		{Orders: []models.Order{sampleOrder(3)}},
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = svc.WriteOrdersCSV(context.Background(), &buf, uuid.New(), orders.OrderFilters{})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 orders

	assert.Equal(t, ordersCSVHeader, rows[0])
	assert.Equal(t, "2025-0001-0601", rows[1][0])
	assert.Equal(t, "2025-0601-0001", rows[1][1])
	assert.Equal(t, "2025-06-01T12:00:00Z", rows[1][2])
	assert.Equal(t, "13.33", rows[1][7])
	assert.Equal(t, "1.27", rows[1][8])
	assert.Equal(t, "2.50", rows[1][9])
	assert.Equal(t, "17.10", rows[1][10])
	assert.Equal(t, "2", rows[1][11])

	// Pagination walked both pages.
	assert.Equal(t, 2, repo.calls)
}

func TestWriteOrdersCSVEmptyTenant(t *testing.T) {
	svc, err := NewService(&pagedOrdersRepo{})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = svc.WriteOrdersCSV(context.Background(), &buf, uuid.New(), orders.OrderFilters{})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestWriteOrdersCSVRequiresTenant(t *testing.T) {
	svc, err := NewService(&pagedOrdersRepo{})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = svc.WriteOrdersCSV(context.Background(), &buf, uuid.Nil, orders.OrderFilters{})
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
