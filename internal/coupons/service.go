package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/internal/wallet"
	dbpkg "github.com/scraploop/scraploop-backend/pkg/db"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
)

const usageIdentityConstraint = "idx_coupon_usages_identity"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// walletLedger is the slice of the wallet service the coupon engine needs:
// applying the credit leg inside the redemption transaction.
type walletLedger interface {
	GetOrCreateAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error)
	ApplyTx(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

// Service defines the coupon engine operations.
type Service interface {
	Validate(ctx context.Context, code string, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.Coupon, error)
	Redeem(ctx context.Context, input RedeemInput) (*Redemption, error)
	ListAvailable(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) ([]models.Coupon, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	wallet walletLedger
	outbox outboxPublisher
	now    func() time.Time
}

// RedeemInput identifies the redeeming identity and the coupon code.
type RedeemInput struct {
	Code      string
	OwnerType enums.OwnerType
	OwnerID   uuid.UUID
}

// Redemption reports the applied credit.
type Redemption struct {
	Coupon      *models.Coupon            `json:"coupon"`
	Transaction *models.WalletTransaction `json:"transaction"`
}

// CouponRedeemedEvent is emitted after a successful redemption.
type CouponRedeemedEvent struct {
	CouponID    uuid.UUID       `json:"coupon_id"`
	Code        string          `json:"code"`
	OwnerType   enums.OwnerType `json:"owner_type"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	AmountPaise int64           `json:"amount_paise"`
}

// NewService builds a coupon service with the required dependencies.
func NewService(repo Repository, tx txRunner, walletSvc walletLedger, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		wallet: walletSvc,
		outbox: outboxSvc,
		now:    time.Now,
	}, nil
}

func (s *service) Validate(ctx context.Context, code string, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.Coupon, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if err := s.checkRedeemable(ctx, coupon, ownerType, ownerID); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Redeem credits the coupon amount exactly once per identity. The coupon row
// is locked for the duration so the usage counter and the per-identity
// uniqueness stay consistent under concurrent redemption.
func (s *service) Redeem(ctx context.Context, input RedeemInput) (*Redemption, error) {
	code := normalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	// The wallet row must exist before the redemption transaction opens so
	// the credit leg only has to lock it.
	if _, err := s.wallet.GetOrCreateAccount(ctx, input.OwnerType, input.OwnerID); err != nil {
		return nil, err
	}

	var redemption *Redemption
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		coupon, err := repo.LockByCode(ctx, code)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock coupon")
		}
		if err := s.checkRedeemable(ctx, coupon, input.OwnerType, input.OwnerID); err != nil {
			return err
		}

		enforceLimit := coupon.UsageType == enums.CouponUsageTypeLimited
		bumped, err := repo.IncrementUsedCount(ctx, coupon.ID, enforceLimit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
		}
		if !bumped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon redemption limit reached")
		}

		couponCode := coupon.Code
		txn, err := s.wallet.ApplyTx(ctx, tx, wallet.EntryInput{
			OwnerType:   input.OwnerType,
			OwnerID:     input.OwnerID,
			Type:        enums.TransactionTypeCredit,
			Category:    enums.TransactionCategoryCouponCredit,
			AmountPaise: coupon.AmountPaise,
			Description: fmt.Sprintf("coupon %s", coupon.Code),
			CouponCode:  &couponCode,
		})
		if err != nil {
			return err
		}

		usage := &models.CouponUsage{
			CouponID:            coupon.ID,
			OwnerType:           input.OwnerType,
			OwnerID:             input.OwnerID,
			WalletTransactionID: txn.ID,
		}
		if err := repo.CreateUsage(ctx, usage); err != nil {
			if dbpkg.IsUniqueViolation(err, usageIdentityConstraint) {
				return pkgerrors.New(pkgerrors.CodeAlreadyRedeemed, "coupon already redeemed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
		}

		redemption = &Redemption{Coupon: coupon, Transaction: txn}

		event := outbox.DomainEvent{
			EventType:     enums.EventCouponRedeemed,
			AggregateType: enums.AggregateCoupon,
			AggregateID:   coupon.ID,
			Version:       1,
			Data: CouponRedeemedEvent{
				CouponID:    coupon.ID,
				Code:        coupon.Code,
				OwnerType:   input.OwnerType,
				OwnerID:     input.OwnerID,
				AmountPaise: coupon.AmountPaise,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// ListAvailable returns the coupons the identity can still redeem. Usage is
// resolved with a single batched query over the candidate ids.
func (s *service) ListAvailable(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) ([]models.Coupon, error) {
	if !ownerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid owner type")
	}
	now := s.now()
	candidates, err := s.repo.ListActive(ctx, now, ownerType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	if len(candidates) == 0 {
		return []models.Coupon{}, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, coupon := range candidates {
		ids = append(ids, coupon.ID)
	}
	usages, err := s.repo.FindUsagesForOwner(ctx, ids, ownerType, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupon usage")
	}
	used := make(map[uuid.UUID]struct{}, len(usages))
	for _, usage := range usages {
		used[usage.CouponID] = struct{}{}
	}

	available := make([]models.Coupon, 0, len(candidates))
	for _, coupon := range candidates {
		if _, redeemed := used[coupon.ID]; redeemed {
			continue
		}
		if coupon.UsageType == enums.CouponUsageTypeLimited && coupon.UsedCount >= coupon.UsageLimit {
			continue
		}
		available = append(available, coupon)
	}
	return available, nil
}

func (s *service) checkRedeemable(ctx context.Context, coupon *models.Coupon, ownerType enums.OwnerType, ownerID uuid.UUID) error {
	now := s.now()
	if !coupon.Active {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is inactive")
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidTo) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon outside validity window")
	}
	if !coupon.ApplicableRole.Allows(ownerType) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "coupon not applicable to caller role")
	}
	if coupon.UsageType == enums.CouponUsageTypeLimited && coupon.UsedCount >= coupon.UsageLimit {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon redemption limit reached")
	}

	usages, err := s.repo.FindUsagesForOwner(ctx, []uuid.UUID{coupon.ID}, ownerType, ownerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon usage")
	}
	if len(usages) > 0 {
		return pkgerrors.New(pkgerrors.CodeAlreadyRedeemed, "coupon already redeemed")
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
