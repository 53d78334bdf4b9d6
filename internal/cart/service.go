package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/internal/products"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

// Service defines cart operations for storefront customers.
type Service interface {
	GetActiveCart(ctx context.Context, tenantID, customerID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQty(ctx context.Context, input UpdateItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, tenantID, customerID, productID uuid.UUID) (*models.CartRecord, error)
}

// AddItemInput adds a product to the customer's active cart.
type AddItemInput struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Qty        int
}

// UpdateItemInput sets the quantity of an existing cart line.
type UpdateItemInput struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Qty        int
}

type service struct {
	repo     Repository
	products products.Repository
	logg     *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, productsRepo products.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: productsRepo, logg: logg}, nil
}

// GetActiveCart returns the customer's active cart, creating one on first use.
func (s *service) GetActiveCart(ctx context.Context, tenantID, customerID uuid.UUID) (*models.CartRecord, error) {
	if tenantID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and customer id required")
	}

	cart, err := s.repo.FindActiveCart(ctx, tenantID, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart != nil {
		return cart, nil
	}

	created, err := s.repo.CreateCart(ctx, &models.CartRecord{
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.CartRecord, error) {
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	cart, err := s.GetActiveCart(ctx, input.TenantID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || product.TenantID != input.TenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.Status != enums.ProductStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if product.StockQty < input.Qty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
			WithDetails(map[string]any{"product_id": product.ID, "available": product.StockQty})
	}

	item := &models.CartItem{
		CartID:         cart.ID,
		ProductID:      product.ID,
		ProductSKU:     product.SKU,
		ProductName:    product.Name,
		UnitPriceCents: product.UnitPriceCents,
		Qty:            input.Qty,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) UpdateItemQty(ctx context.Context, input UpdateItemInput) (*models.CartRecord, error) {
	if input.Qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	cart, err := s.requireActiveCart(ctx, input.TenantID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	if input.Qty == 0 {
		if err := s.repo.RemoveItem(ctx, cart.ID, input.ProductID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return s.reload(ctx, cart.ID)
	}

	if err := s.repo.UpdateItemQty(ctx, cart.ID, input.ProductID, input.Qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) RemoveItem(ctx context.Context, tenantID, customerID, productID uuid.UUID) (*models.CartRecord, error) {
	cart, err := s.requireActiveCart(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) requireActiveCart(ctx context.Context, tenantID, customerID uuid.UUID) (*models.CartRecord, error) {
	if tenantID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and customer id required")
	}
	cart, err := s.repo.FindActiveCart(ctx, tenantID, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
	}
	return cart, nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	cart, err := s.repo.FindCartWithItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}
