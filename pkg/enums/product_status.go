package enums

// ProductStatus controls storefront visibility of a product.
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	switch p {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	default:
		return false
	}
}
