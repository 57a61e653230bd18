package enums

import "fmt"

// TransactionCategory records the business reason behind a wallet transaction.
type TransactionCategory string

const (
	TransactionCategoryPaymentSent     TransactionCategory = "payment_sent"
	TransactionCategoryPaymentReceived TransactionCategory = "payment_received"
	TransactionCategoryCommission      TransactionCategory = "commission"
	TransactionCategoryRecharge        TransactionCategory = "recharge"
	TransactionCategoryWithdrawal      TransactionCategory = "withdrawal"
	TransactionCategoryCouponCredit    TransactionCategory = "coupon_credit"
	TransactionCategoryRefund          TransactionCategory = "refund"
)

var validTransactionCategories = []TransactionCategory{
	TransactionCategoryPaymentSent,
	TransactionCategoryPaymentReceived,
	TransactionCategoryCommission,
	TransactionCategoryRecharge,
	TransactionCategoryWithdrawal,
	TransactionCategoryCouponCredit,
	TransactionCategoryRefund,
}

// String implements fmt.Stringer.
func (t TransactionCategory) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionCategory.
func (t TransactionCategory) IsValid() bool {
	for _, candidate := range validTransactionCategories {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionCategory converts raw input into a TransactionCategory.
func ParseTransactionCategory(value string) (TransactionCategory, error) {
	for _, candidate := range validTransactionCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction category %q", value)
}
