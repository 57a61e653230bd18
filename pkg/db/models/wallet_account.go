package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// WalletAccount is the single balance row per marketplace identity. The
// (owner_type, owner_id) pair is unique; balance may go negative only within
// the configured collector float.
type WalletAccount struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerType    enums.OwnerType     `gorm:"column:owner_type;type:owner_type;not null;uniqueIndex:idx_wallet_accounts_owner"`
	OwnerID      uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_wallet_accounts_owner"`
	BalancePaise int64               `gorm:"column:balance_paise;not null;default:0"`
	Currency     enums.Currency      `gorm:"column:currency;type:text;not null;default:'INR'"`
	Status       enums.AccountStatus `gorm:"column:status;type:account_status;not null;default:'active'"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
