package enums

import "fmt"

// PaymentStatus tracks whether an order's money movement has settled.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPending:   {},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	_, ok := paymentStatuses[p]
	return ok
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	parsed := PaymentStatus(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid payment status %q", value)
	}
	return parsed, nil
}
