package enums

import "fmt"

// QuantityType routes an order to the small or large collector tier.
type QuantityType string

const (
	QuantityTypeSmall QuantityType = "small"
	QuantityTypeLarge QuantityType = "large"
)

var validQuantityTypes = []QuantityType{
	QuantityTypeSmall,
	QuantityTypeLarge,
}

// String implements fmt.Stringer.
func (q QuantityType) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuantityType.
func (q QuantityType) IsValid() bool {
	for _, candidate := range validQuantityTypes {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuantityType converts raw input into a QuantityType.
func ParseQuantityType(value string) (QuantityType, error) {
	for _, candidate := range validQuantityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quantity type %q", value)
}
