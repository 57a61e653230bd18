package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

// Repository defines persistence operations for wallet tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAccount(ctx context.Context, account *models.WalletAccount) error
	FindAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error)
	LockAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error)
	LockAccountsForOwners(ctx context.Context, owners []OwnerRef) ([]models.WalletAccount, error)
	UpdateBalance(ctx context.Context, accountID uuid.UUID, balancePaise int64) error
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	FindTransactionByExternalPaymentID(ctx context.Context, externalPaymentID string) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error)
	CreatePayoutRequest(ctx context.Context, req *models.PayoutRequest) error
}
