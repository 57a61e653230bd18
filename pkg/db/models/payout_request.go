package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// PayoutRequest records a withdrawal awaiting bank transfer. The wallet debit
// happens in the same transaction that inserts this row.
type PayoutRequest struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID           uuid.UUID          `gorm:"column:account_id;type:uuid;not null;index"`
	WalletTransactionID uuid.UUID          `gorm:"column:wallet_transaction_id;type:uuid;not null"`
	AmountPaise         int64              `gorm:"column:amount_paise;not null"`
	BeneficiaryName     string             `gorm:"column:beneficiary_name;not null"`
	VPA                 *string            `gorm:"column:vpa"`
	BankAccountNumber   *string            `gorm:"column:bank_account_number"`
	BankIFSC            *string            `gorm:"column:bank_ifsc"`
	Status              enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'pending'"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
