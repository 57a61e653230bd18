package enums

import "fmt"

// Currency denominates wallet balances. Amounts are stored in the minor
// unit (paise for INR). INR is the only currency today; the enum exists
// so the column and API fields are explicit about it.
type Currency string

const CurrencyINR Currency = "INR"

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	return c == CurrencyINR
}

func ParseCurrency(value string) (Currency, error) {
	parsed := Currency(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return parsed, nil
}
