package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}
	foreignKey := &pgconn.PgError{Code: "23503", ConstraintName: "order_items_order_id_fkey"}

	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(unique, "orders_order_number_key"))
	assert.False(t, IsUniqueViolation(unique, "orders_pkey"))
	assert.False(t, IsUniqueViolation(foreignKey, ""))

	// Matching survives gorm's wrapping.
	wrapped := fmt.Errorf("create order: %w", unique)
	assert.True(t, IsUniqueViolation(wrapped, "orders_order_number_key"))
}

func TestIsUniqueViolationFallback(t *testing.T) {
	pgText := errors.New(`ERROR: duplicate key value violates unique constraint "orders_order_number_key" (SQLSTATE 23505)`)
	lite := errors.New("UNIQUE constraint failed: orders.order_number")

	assert.True(t, IsUniqueViolation(pgText, ""))
	assert.True(t, IsUniqueViolation(lite, ""))
	assert.True(t, IsUniqueViolation(pgText, "orders_order_number_key"))
	assert.False(t, IsUniqueViolation(pgText, "orders_pkey"))
	assert.False(t, IsUniqueViolation(errors.New("connection refused"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
