package enums

import "fmt"

// CouponUsageType controls how many redemptions a coupon permits overall.
// Every type is additionally capped at one redemption per identity.
type CouponUsageType string

const (
	CouponUsageTypeSingleUsePerUser CouponUsageType = "single_use_per_user"
	CouponUsageTypeLimited          CouponUsageType = "limited"
	CouponUsageTypeUnlimited        CouponUsageType = "unlimited"
)

var validCouponUsageTypes = []CouponUsageType{
	CouponUsageTypeSingleUsePerUser,
	CouponUsageTypeLimited,
	CouponUsageTypeUnlimited,
}

// String implements fmt.Stringer.
func (c CouponUsageType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponUsageType.
func (c CouponUsageType) IsValid() bool {
	for _, candidate := range validCouponUsageTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponUsageType converts raw input into a CouponUsageType.
func ParseCouponUsageType(value string) (CouponUsageType, error) {
	for _, candidate := range validCouponUsageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon usage type %q", value)
}
