package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/db"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

// Service defines catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, input UpdateProductInput) (*models.Product, error)
	Get(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filters ProductFilters) ([]models.Product, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" || strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku and name required")
	}
	if input.UnitPriceCents < 0 || input.StockQty < 0 || input.TaxRateBps < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price, stock and tax rate must be non-negative")
	}

	product := &models.Product{
		TenantID:       input.TenantID,
		SKU:            sku,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		UnitPriceCents: input.UnitPriceCents,
		TaxRateBps:     input.TaxRateBps,
		StockQty:       input.StockQty,
		Status:         enums.ProductStatusDraft,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_products_tenant_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists for tenant")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateProductInput) (*models.Product, error) {
	if input.TenantID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and product id required")
	}

	product, err := s.loadScoped(ctx, input.TenantID, input.ProductID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.UnitPriceCents != nil {
		if *input.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
		}
		updates["unit_price_cents"] = *input.UnitPriceCents
	}
	if input.TaxRateBps != nil {
		if *input.TaxRateBps < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be non-negative")
		}
		updates["tax_rate_bps"] = *input.TaxRateBps
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
		}
		updates["stock_qty"] = *input.StockQty
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.UpdateProduct(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.loadScoped(ctx, input.TenantID, input.ProductID)
}

func (s *service) Get(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	if tenantID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and product id required")
	}
	return s.loadScoped(ctx, tenantID, productID)
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filters ProductFilters) ([]models.Product, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	rows, err := s.repo.ListTenantProducts(ctx, tenantID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) loadScoped(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || product.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
