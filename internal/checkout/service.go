package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/internal/cart"
	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/internal/orders/orderid"
	"github.com/adriancampa/storeloom-backend/internal/products"
	"github.com/adriancampa/storeloom-backend/pkg/config"
	"github.com/adriancampa/storeloom-backend/pkg/db"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service converts a customer's active cart into an order.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
}

// CheckoutInput carries everything needed to place an order.
type CheckoutInput struct {
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	Currency      enums.Currency
	ShippingCents int
	Notes         *string
}

type service struct {
	carts    cart.Repository
	products products.Repository
	orders   orders.Repository
	tx       txRunner
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	genOpts  []orderid.Option
}

// Option configures optional service behavior.
type Option func(*service)

// WithGeneratorOptions forwards options to the identifier generator. Tests use
// this to pin its clock.
func WithGeneratorOptions(opts ...orderid.Option) Option {
	return func(s *service) { s.genOpts = opts }
}

// NewService builds a checkout service with the required dependencies.
func NewService(
	carts cart.Repository,
	productsRepo products.Repository,
	ordersRepo orders.Repository,
	tx txRunner,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
	opts ...Option,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.InsertRetries <= 0 {
		cfg.InsertRetries = 1
	}
	svc := &service{
		carts:    carts,
		products: productsRepo,
		orders:   ordersRepo,
		tx:       tx,
		cfg:      cfg,
		logg:     logg,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Checkout runs the full placement flow in one transaction: validate the cart,
// price it, generate identifiers, insert the order with its items, decrement
// stock and mark the cart converted.
//
// The generator's existence checks and the insert are separate statements, so
// a concurrent checkout can claim a candidate identifier in between. When the
// insert then trips a unique constraint the whole generate+insert cycle is
// retried with fresh identifiers, bounded by the configured retry limit.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil || input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and customer id required")
	}
	if input.ShippingCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping must be non-negative")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.InsertRetries; attempt++ {
		order, err := s.placeOrder(ctx, input, currency)
		if err == nil {
			return order, nil
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, err
		}

		lastErr = err
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"attempt": attempt + 1,
			"tenant":  input.TenantID,
		}), "order insert collided, regenerating identifiers")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeExhausted, lastErr, "order insert retries exhausted")
}

func (s *service) placeOrder(ctx context.Context, input CheckoutInput, currency enums.Currency) (*models.Order, error) {
	var placed *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		productsRepo := s.products.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		record, err := carts.FindActiveCart(ctx, input.TenantID, input.CustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if record == nil || len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		catalog, err := s.loadCatalog(ctx, productsRepo, input.TenantID, record.Items)
		if err != nil {
			return err
		}

		quote := PriceCart(record.Items, catalog, input.ShippingCents)

		generator, err := orderid.NewGenerator(ordersRepo, s.genOpts...)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build generator")
		}
		orderID, err := generator.UniqueID(ctx)
		if err != nil {
			return err
		}
		orderNumber, err := generator.NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:            orderID,
			OrderNumber:   orderNumber,
			TenantID:      input.TenantID,
			CustomerID:    input.CustomerID,
			Currency:      currency,
			Status:        enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			SubtotalCents: quote.SubtotalCents,
			TaxCents:      quote.TaxCents,
			ShippingCents: quote.ShippingCents,
			TotalCents:    quote.TotalCents,
			Notes:         input.Notes,
			Items:         buildOrderItems(orderID, quote.Items),
		}
		if _, err := ordersRepo.CreateOrder(ctx, order); err != nil {
			// Bubble unique violations raw so the outer loop can retry them.
			return err
		}

		for _, item := range quote.Items {
			if err := productsRepo.DecrementStock(ctx, item.ProductID, item.Qty); err != nil {
				if errors.Is(err, products.ErrInsufficientStock) {
					return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
						WithDetails(map[string]any{"product_id": item.ProductID, "sku": item.SKU})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
		}

		if err := carts.UpdateCartStatus(ctx, record.ID, enums.CartStatusConverted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     placed.ID,
		"order_number": placed.OrderNumber,
		"total_cents":  placed.TotalCents,
	}), "order placed")
	return placed, nil
}

// loadCatalog resolves every cart line against the live catalog and re-checks
// availability inside the transaction.
func (s *service) loadCatalog(ctx context.Context, repo products.Repository, tenantID uuid.UUID, items []models.CartItem) (map[uuid.UUID]models.Product, error) {
	catalog := make(map[uuid.UUID]models.Product, len(items))
	for _, item := range items {
		product, err := repo.FindProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil || product.TenantID != tenantID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references unknown product").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if product.Status != enums.ProductStatusPublished {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available").
				WithDetails(map[string]any{"product_id": item.ProductID, "sku": product.SKU})
		}
		if product.StockQty < item.Qty {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"product_id": item.ProductID, "available": product.StockQty})
		}
		catalog[product.ID] = *product
	}
	return catalog, nil
}

func buildOrderItems(orderID string, priced []PricedItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(priced))
	for _, line := range priced {
		productID := line.ProductID
		items = append(items, models.OrderItem{
			OrderID:        orderID,
			ProductID:      &productID,
			SKU:            line.SKU,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			LineTotalCents: line.LineTotalCents,
		})
	}
	return items
}
