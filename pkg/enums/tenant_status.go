package enums

// TenantStatus tracks whether a tenant storefront is live.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusClosed    TenantStatus = "closed"
)

// String implements fmt.Stringer.
func (t TenantStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TenantStatus.
func (t TenantStatus) IsValid() bool {
	switch t {
	case TenantStatusActive, TenantStatusSuspended, TenantStatusClosed:
		return true
	default:
		return false
	}
}
