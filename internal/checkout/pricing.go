package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
)

// PricedItem is one order line derived from a cart line. Unit price comes from
// the cart's add-time snapshot; the tax rate comes from the current catalog row.
type PricedItem struct {
	ProductID      uuid.UUID
	SKU            string
	Name           string
	UnitPriceCents int
	Qty            int
	LineTotalCents int
	TaxCents       int
}

// Quote is the priced view of a cart, in integer cents.
type Quote struct {
	Items         []PricedItem
	SubtotalCents int
	TaxCents      int
	ShippingCents int
	TotalCents    int
}

var bpsDivisor = decimal.NewFromInt(10000)

// PriceCart computes line totals and tax for every cart item. Tax is computed
// per line from the product's rate in basis points, rounded half-up to the
// nearest cent, so the order total always equals the sum of its parts.
func PriceCart(items []models.CartItem, catalog map[uuid.UUID]models.Product, shippingCents int) Quote {
	quote := Quote{
		Items:         make([]PricedItem, 0, len(items)),
		ShippingCents: shippingCents,
	}

	for _, item := range items {
		lineTotal := item.UnitPriceCents * item.Qty

		taxCents := 0
		if product, ok := catalog[item.ProductID]; ok && product.TaxRateBps > 0 {
			taxCents = int(decimal.NewFromInt(int64(lineTotal)).
				Mul(decimal.NewFromInt(int64(product.TaxRateBps))).
				Div(bpsDivisor).
				Round(0).
				IntPart())
		}

		quote.Items = append(quote.Items, PricedItem{
			ProductID:      item.ProductID,
			SKU:            item.ProductSKU,
			Name:           item.ProductName,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			LineTotalCents: lineTotal,
			TaxCents:       taxCents,
		})
		quote.SubtotalCents += lineTotal
		quote.TaxCents += taxCents
	}

	quote.TotalCents = quote.SubtotalCents + quote.TaxCents + quote.ShippingCents
	return quote
}
