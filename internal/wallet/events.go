package wallet

import (
	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// WalletRechargedEvent is emitted after an external payment credits a wallet.
type WalletRechargedEvent struct {
	TransactionID     uuid.UUID       `json:"transaction_id"`
	OwnerType         enums.OwnerType `json:"owner_type"`
	OwnerID           uuid.UUID       `json:"owner_id"`
	AmountPaise       int64           `json:"amount_paise"`
	ExternalPaymentID string          `json:"external_payment_id"`
}

// PayoutRequestedEvent is emitted when a withdrawal opens a payout request.
type PayoutRequestedEvent struct {
	PayoutRequestID uuid.UUID       `json:"payout_request_id"`
	OwnerType       enums.OwnerType `json:"owner_type"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	AmountPaise     int64           `json:"amount_paise"`
}

// OrderSettledEvent reports the ledger legs recorded for a completed order.
type OrderSettledEvent struct {
	OrderID         uuid.UUID       `json:"order_id"`
	OrderType       enums.OrderType `json:"order_type"`
	RequesterID     uuid.UUID       `json:"requester_id"`
	CollectorID     uuid.UUID       `json:"collector_id"`
	AmountPaise     int64           `json:"amount_paise"`
	CommissionPaise int64           `json:"commission_paise"`
}
