package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Calculator derives the platform commission for a settled order.
type Calculator struct {
	rate         decimal.Decimal
	minimumPaise int64
}

// NewCalculator parses the configured rate (e.g. "0.01" for 1%) and validates
// the policy bounds.
func NewCalculator(rate string, minimumPaise int64) (*Calculator, error) {
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("parsing commission rate %q: %w", rate, err)
	}
	if parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission rate %s out of range [0,1]", parsed)
	}
	if minimumPaise < 0 {
		return nil, fmt.Errorf("commission minimum must not be negative")
	}
	return &Calculator{rate: parsed, minimumPaise: minimumPaise}, nil
}

// Fee returns max(minimum, round(amount * rate)) in paise. Rounding is
// half-up on the paise value.
func (c *Calculator) Fee(amountPaise int64) int64 {
	if amountPaise <= 0 {
		return c.minimumPaise
	}
	proportional := c.rate.
		Mul(decimal.NewFromInt(amountPaise)).
		Round(0).
		IntPart()
	if proportional < c.minimumPaise {
		return c.minimumPaise
	}
	return proportional
}

// Rate exposes the configured proportional rate.
func (c *Calculator) Rate() decimal.Decimal {
	return c.rate
}

// MinimumPaise exposes the configured fee floor.
func (c *Calculator) MinimumPaise() int64 {
	return c.minimumPaise
}
