package enums

import "fmt"

// CouponRole restricts which side of the marketplace may redeem a coupon.
type CouponRole string

const (
	CouponRoleRequester CouponRole = "requester"
	CouponRoleCollector CouponRole = "collector"
	CouponRoleAll       CouponRole = "all"
)

var validCouponRoles = []CouponRole{
	CouponRoleRequester,
	CouponRoleCollector,
	CouponRoleAll,
}

// String implements fmt.Stringer.
func (c CouponRole) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponRole.
func (c CouponRole) IsValid() bool {
	for _, candidate := range validCouponRoles {
		if candidate == c {
			return true
		}
	}
	return false
}

// Allows reports whether an owner of the given type may redeem the coupon.
func (c CouponRole) Allows(owner OwnerType) bool {
	switch c {
	case CouponRoleAll:
		return true
	case CouponRoleRequester:
		return owner == OwnerTypeRequester
	case CouponRoleCollector:
		return owner == OwnerTypeCollector
	default:
		return false
	}
}

// ParseCouponRole converts raw input into a CouponRole.
func ParseCouponRole(value string) (CouponRole, error) {
	for _, candidate := range validCouponRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon role %q", value)
}
