package coupons

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/internal/wallet"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
)

type fakeTxRunner struct {
	db *gorm.DB
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(f.db)
}

type capturedOutbox struct {
	events []outbox.DomainEvent
}

func (c *capturedOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	c.events = append(c.events, event)
	return nil
}

type stubLedger struct {
	credits []wallet.EntryInput
}

func (s *stubLedger) GetOrCreateAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error) {
	return &models.WalletAccount{ID: uuid.New(), OwnerType: ownerType, OwnerID: ownerID}, nil
}

func (s *stubLedger) ApplyTx(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	s.credits = append(s.credits, input)
	return &models.WalletTransaction{
		ID:          uuid.New(),
		Type:        input.Type,
		Category:    input.Category,
		AmountPaise: input.AmountPaise,
	}, nil
}

type stubCouponsRepo struct {
	coupons map[string]*models.Coupon
	usages  []*models.CouponUsage

	incrementOverride  *bool
	conflictNextUsage  bool
}

func newStubCouponsRepo() *stubCouponsRepo {
	return &stubCouponsRepo{coupons: make(map[string]*models.Coupon)}
}

func (s *stubCouponsRepo) seed(coupon *models.Coupon) *models.Coupon {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	s.coupons[coupon.Code] = coupon
	return coupon
}

func (s *stubCouponsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCouponsRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	s.seed(coupon)
	return nil
}

func (s *stubCouponsRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, ok := s.coupons[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return coupon, nil
}

func (s *stubCouponsRepo) LockByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return s.FindByCode(ctx, code)
}

func (s *stubCouponsRepo) ListActive(ctx context.Context, now time.Time, owner enums.OwnerType) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, coupon := range s.coupons {
		if !coupon.Active || now.Before(coupon.ValidFrom) || now.After(coupon.ValidTo) {
			continue
		}
		if !coupon.ApplicableRole.Allows(owner) {
			continue
		}
		out = append(out, *coupon)
	}
	return out, nil
}

func (s *stubCouponsRepo) FindUsagesForOwner(ctx context.Context, couponIDs []uuid.UUID, ownerType enums.OwnerType, ownerID uuid.UUID) ([]models.CouponUsage, error) {
	wanted := make(map[uuid.UUID]bool, len(couponIDs))
	for _, id := range couponIDs {
		wanted[id] = true
	}
	var out []models.CouponUsage
	for _, usage := range s.usages {
		if wanted[usage.CouponID] && usage.OwnerType == ownerType && usage.OwnerID == ownerID {
			out = append(out, *usage)
		}
	}
	return out, nil
}

func (s *stubCouponsRepo) CreateUsage(ctx context.Context, usage *models.CouponUsage) error {
	if s.conflictNextUsage {
		s.conflictNextUsage = false
		return errors.New(`duplicate key value violates unique constraint "idx_coupon_usages_identity"`)
	}
	usage.ID = uuid.New()
	s.usages = append(s.usages, usage)
	return nil
}

func (s *stubCouponsRepo) IncrementUsedCount(ctx context.Context, couponID uuid.UUID, enforceLimit bool) (bool, error) {
	if s.incrementOverride != nil {
		return *s.incrementOverride, nil
	}
	for _, coupon := range s.coupons {
		if coupon.ID != couponID {
			continue
		}
		if enforceLimit && coupon.UsedCount >= coupon.UsageLimit {
			return false, nil
		}
		coupon.UsedCount++
		return true, nil
	}
	return false, nil
}

func (s *stubCouponsRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, coupon := range s.coupons {
		if coupon.Active && now.After(coupon.ValidTo) {
			coupon.Active = false
			count++
		}
	}
	return count, nil
}

func (s *stubCouponsRepo) DeactivateExhausted(ctx context.Context) (int64, error) {
	var count int64
	for _, coupon := range s.coupons {
		if coupon.Active && coupon.UsageType == enums.CouponUsageTypeLimited && coupon.UsedCount >= coupon.UsageLimit {
			coupon.Active = false
			count++
		}
	}
	return count, nil
}

func newCouponService(t *testing.T, repo Repository, ledger *stubLedger) (Service, *capturedOutbox) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sink := &capturedOutbox{}
	svc, err := NewService(repo, fakeTxRunner{db: db}, ledger, sink)
	require.NoError(t, err)
	return svc, sink
}

func activeCoupon(code string) *models.Coupon {
	return &models.Coupon{
		Code:           code,
		AmountPaise:    5000,
		ApplicableRole: enums.CouponRoleAll,
		UsageType:      enums.CouponUsageTypeUnlimited,
		ValidFrom:      time.Now().Add(-time.Hour),
		ValidTo:        time.Now().Add(time.Hour),
		Active:         true,
	}
}

func TestRedeemCreditsWalletOnce(t *testing.T) {
	repo := newStubCouponsRepo()
	coupon := repo.seed(activeCoupon("WELCOME50"))
	ledger := &stubLedger{}
	svc, sink := newCouponService(t, repo, ledger)

	ownerID := uuid.New()
	// Codes match case-insensitively.
	redemption, err := svc.Redeem(context.Background(), RedeemInput{
		Code:      "  welcome50 ",
		OwnerType: enums.OwnerTypeRequester,
		OwnerID:   ownerID,
	})
	require.NoError(t, err)

	assert.Equal(t, coupon.ID, redemption.Coupon.ID)
	require.NotNil(t, redemption.Transaction)

	require.Len(t, ledger.credits, 1)
	credit := ledger.credits[0]
	assert.Equal(t, enums.TransactionTypeCredit, credit.Type)
	assert.Equal(t, enums.TransactionCategoryCouponCredit, credit.Category)
	assert.Equal(t, int64(5000), credit.AmountPaise)
	require.NotNil(t, credit.CouponCode)
	assert.Equal(t, "WELCOME50", *credit.CouponCode)

	require.Len(t, repo.usages, 1)
	assert.Equal(t, redemption.Transaction.ID, repo.usages[0].WalletTransactionID)
	assert.Equal(t, 1, coupon.UsedCount)

	require.Len(t, sink.events, 1)
	assert.Equal(t, enums.EventCouponRedeemed, sink.events[0].EventType)
}

func TestRedeemRejectsSecondRedemption(t *testing.T) {
	repo := newStubCouponsRepo()
	repo.seed(activeCoupon("WELCOME50"))
	ledger := &stubLedger{}
	svc, _ := newCouponService(t, repo, ledger)

	input := RedeemInput{Code: "WELCOME50", OwnerType: enums.OwnerTypeRequester, OwnerID: uuid.New()}
	_, err := svc.Redeem(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeAlreadyRedeemed, pkgerrors.As(err).Code())
	assert.Len(t, ledger.credits, 1)
}

func TestRedeemRecoversFromUsageInsertRace(t *testing.T) {
	repo := newStubCouponsRepo()
	repo.seed(activeCoupon("WELCOME50"))
	repo.conflictNextUsage = true
	svc, sink := newCouponService(t, repo, &stubLedger{})

	_, err := svc.Redeem(context.Background(), RedeemInput{
		Code:      "WELCOME50",
		OwnerType: enums.OwnerTypeCollector,
		OwnerID:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeAlreadyRedeemed, pkgerrors.As(err).Code())
	assert.Empty(t, sink.events)
}

func TestRedeemLimitedCoupon(t *testing.T) {
	repo := newStubCouponsRepo()
	coupon := activeCoupon("FESTIVE")
	coupon.UsageType = enums.CouponUsageTypeLimited
	coupon.UsageLimit = 1
	repo.seed(coupon)
	svc, _ := newCouponService(t, repo, &stubLedger{})

	_, err := svc.Redeem(context.Background(), RedeemInput{
		Code: "FESTIVE", OwnerType: enums.OwnerTypeRequester, OwnerID: uuid.New(),
	})
	require.NoError(t, err)

	// The cap is exhausted for everyone else.
	_, err = svc.Redeem(context.Background(), RedeemInput{
		Code: "FESTIVE", OwnerType: enums.OwnerTypeRequester, OwnerID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRedeemLimitedCouponLosesCounterRace(t *testing.T) {
	repo := newStubCouponsRepo()
	coupon := activeCoupon("FESTIVE")
	coupon.UsageType = enums.CouponUsageTypeLimited
	coupon.UsageLimit = 2
	coupon.UsedCount = 1
	repo.seed(coupon)
	bumped := false
	repo.incrementOverride = &bumped
	ledger := &stubLedger{}
	svc, _ := newCouponService(t, repo, ledger)

	_, err := svc.Redeem(context.Background(), RedeemInput{
		Code: "FESTIVE", OwnerType: enums.OwnerTypeRequester, OwnerID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Empty(t, ledger.credits)
}

func TestValidateChecks(t *testing.T) {
	repo := newStubCouponsRepo()
	svc, _ := newCouponService(t, repo, &stubLedger{})
	ctx := context.Background()
	ownerID := uuid.New()

	_, err := svc.Validate(ctx, "MISSING", enums.OwnerTypeRequester, ownerID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	inactive := activeCoupon("INACTIVE")
	inactive.Active = false
	repo.seed(inactive)
	_, err = svc.Validate(ctx, "INACTIVE", enums.OwnerTypeRequester, ownerID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	expired := activeCoupon("EXPIRED")
	expired.ValidFrom = time.Now().Add(-48 * time.Hour)
	expired.ValidTo = time.Now().Add(-24 * time.Hour)
	repo.seed(expired)
	_, err = svc.Validate(ctx, "EXPIRED", enums.OwnerTypeRequester, ownerID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	collectorOnly := activeCoupon("COLLECT10")
	collectorOnly.ApplicableRole = enums.CouponRoleCollector
	repo.seed(collectorOnly)
	_, err = svc.Validate(ctx, "COLLECT10", enums.OwnerTypeRequester, ownerID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	valid, err := svc.Validate(ctx, "COLLECT10", enums.OwnerTypeCollector, ownerID)
	require.NoError(t, err)
	assert.Equal(t, collectorOnly.ID, valid.ID)
}

func TestListAvailableFiltersRedeemedAndExhausted(t *testing.T) {
	repo := newStubCouponsRepo()
	fresh := repo.seed(activeCoupon("FRESH"))
	used := repo.seed(activeCoupon("USED"))
	exhausted := activeCoupon("GONE")
	exhausted.UsageType = enums.CouponUsageTypeLimited
	exhausted.UsageLimit = 5
	exhausted.UsedCount = 5
	repo.seed(exhausted)

	ownerID := uuid.New()
	repo.usages = append(repo.usages, &models.CouponUsage{
		ID:        uuid.New(),
		CouponID:  used.ID,
		OwnerType: enums.OwnerTypeRequester,
		OwnerID:   ownerID,
	})

	svc, _ := newCouponService(t, repo, &stubLedger{})
	available, err := svc.ListAvailable(context.Background(), enums.OwnerTypeRequester, ownerID)
	require.NoError(t, err)

	require.Len(t, available, 1)
	assert.Equal(t, fresh.ID, available[0].ID)
}
