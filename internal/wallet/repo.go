package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateAccount(ctx context.Context, account *models.WalletAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) LockAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// LockAccountsForOwners locks every matching account in primary-key order so
// concurrent settlements acquire row locks in the same sequence.
func (r *repository) LockAccountsForOwners(ctx context.Context, owners []OwnerRef) ([]models.WalletAccount, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	condition := r.db.Session(&gorm.Session{NewDB: true})
	for _, owner := range owners {
		condition = condition.Or(
			r.db.Session(&gorm.Session{NewDB: true}).
				Where("owner_type = ? AND owner_id = ?", owner.OwnerType, owner.OwnerID),
		)
	}
	var accounts []models.WalletAccount
	err := query.Where(condition).Order("id ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) UpdateBalance(ctx context.Context, accountID uuid.UUID, balancePaise int64) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ?", accountID).
		Update("balance_paise", balancePaise).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindTransactionByExternalPaymentID(ctx context.Context, externalPaymentID string) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("external_payment_id = ?", externalPaymentID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListTransactions(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.WalletTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) CreatePayoutRequest(ctx context.Context, req *models.PayoutRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}
