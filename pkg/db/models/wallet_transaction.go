package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// WalletTransaction is one immutable ledger entry. Rows are never updated or
// deleted after insert; balance corrections happen through compensating
// entries.
type WalletTransaction struct {
	ID                uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID         uuid.UUID                 `gorm:"column:account_id;type:uuid;not null;index"`
	Type              enums.TransactionType     `gorm:"column:type;type:transaction_type;not null"`
	Category          enums.TransactionCategory `gorm:"column:category;type:transaction_category;not null"`
	Status            enums.TransactionStatus   `gorm:"column:status;type:transaction_status;not null;default:'success'"`
	AmountPaise       int64                     `gorm:"column:amount_paise;not null"`
	BalanceBefore     int64                     `gorm:"column:balance_before;not null"`
	BalanceAfter      int64                     `gorm:"column:balance_after;not null"`
	Description       string                    `gorm:"column:description;not null"`
	OrderID           *uuid.UUID                `gorm:"column:order_id;type:uuid;index"`
	CouponCode        *string                   `gorm:"column:coupon_code"`
	ExternalPaymentID *string                   `gorm:"column:external_payment_id;uniqueIndex:idx_wallet_transactions_external_payment_id"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
