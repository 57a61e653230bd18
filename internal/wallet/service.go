package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/internal/commission"
	"github.com/scraploop/scraploop-backend/pkg/config"
	dbpkg "github.com/scraploop/scraploop-backend/pkg/db"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

const externalPaymentConstraint = "idx_wallet_transactions_external_payment_id"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the double-entry wallet ledger operations.
type Service interface {
	GetOrCreateAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error)
	Profile(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, params pagination.Params) (*Profile, error)
	ValidateBalance(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, minimumPaise int64) error
	Credit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error)
	ApplyTx(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Transfer(ctx context.Context, input TransferInput) error
	SettleOrderTx(ctx context.Context, tx *gorm.DB, input SettlementInput) (*Settlement, error)
	CreditFromExternalPayment(ctx context.Context, input ExternalCreditInput) (*models.WalletTransaction, bool, error)
	RequestWithdrawal(ctx context.Context, input WithdrawalInput) (*models.PayoutRequest, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	commission *commission.Calculator
	cfg        config.WalletConfig
}

// NewService builds a wallet service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, calc *commission.Calculator, cfg config.WalletConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if calc == nil {
		return nil, fmt.Errorf("commission calculator required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     outboxSvc,
		commission: calc,
		cfg:        cfg,
	}, nil
}

func (s *service) GetOrCreateAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error) {
	if !ownerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid owner type")
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	return s.ensureAccount(ctx, s.repo, ownerType, ownerID)
}

// ensureAccount loads the owner's account through the given repo, creating a
// zero-balance row when none exists yet. Losing a creation race resolves to
// the winner's row.
func (s *service) ensureAccount(ctx context.Context, repo Repository, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error) {
	account, err := repo.FindAccount(ctx, ownerType, ownerID)
	if err == nil {
		return account, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet account")
	}

	fresh := &models.WalletAccount{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Currency:  enums.CurrencyINR,
		Status:    enums.AccountStatusActive,
	}
	if err := repo.CreateAccount(ctx, fresh); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_wallet_accounts_owner") {
			return repo.FindAccount(ctx, ownerType, ownerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet account")
	}
	return fresh, nil
}

func (s *service) Profile(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, params pagination.Params) (*Profile, error) {
	account, err := s.GetOrCreateAccount(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListTransactions(ctx, account.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return &Profile{Account: account, Transactions: rows, NextCursor: next}, nil
}

func (s *service) ValidateBalance(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, minimumPaise int64) error {
	account, err := s.GetOrCreateAccount(ctx, ownerType, ownerID)
	if err != nil {
		return err
	}
	if account.Status != enums.AccountStatusActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "wallet account is frozen")
	}
	if account.BalancePaise < minimumPaise {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance below required minimum").
			WithDetails(map[string]any{
				"balance_paise":  account.BalancePaise,
				"required_paise": minimumPaise,
				"shortfall_paise": minimumPaise - account.BalancePaise,
			})
	}
	return nil
}

func (s *service) Credit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error) {
	input.Type = enums.TransactionTypeCredit
	var txn *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.ApplyTx(ctx, tx, input)
		if err != nil {
			return err
		}
		txn = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Debit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error) {
	input.Type = enums.TransactionTypeDebit
	var txn *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.ApplyTx(ctx, tx, input)
		if err != nil {
			return err
		}
		txn = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ApplyTx records one ledger entry inside the caller's transaction. The
// account row is locked for the duration so the before/after balances are
// exact under concurrency.
func (s *service) ApplyTx(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for ledger entry")
	}
	if err := validateEntry(input); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)
	account, err := repo.LockAccount(ctx, input.OwnerType, input.OwnerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet account")
	}

	return s.applyLocked(ctx, repo, account, input)
}

// applyLocked mutates the already-locked account and appends the ledger row.
func (s *service) applyLocked(ctx context.Context, repo Repository, account *models.WalletAccount, input EntryInput) (*models.WalletTransaction, error) {
	if account.Status != enums.AccountStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wallet account is frozen")
	}

	before := account.BalancePaise
	var after int64
	switch input.Type {
	case enums.TransactionTypeCredit:
		after = before + input.AmountPaise
	case enums.TransactionTypeDebit:
		after = before - input.AmountPaise
		floor := int64(0)
		if input.MinBalanceAfterPaise != nil {
			floor = *input.MinBalanceAfterPaise
		}
		if after < floor {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance insufficient for debit").
				WithDetails(map[string]any{
					"balance_paise":   before,
					"amount_paise":    input.AmountPaise,
					"shortfall_paise": floor - after,
				})
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}

	status := input.Status
	if status == "" {
		status = enums.TransactionStatusSuccess
	}

	txn := &models.WalletTransaction{
		AccountID:         account.ID,
		Type:              input.Type,
		Category:          input.Category,
		Status:            status,
		AmountPaise:       input.AmountPaise,
		BalanceBefore:     before,
		BalanceAfter:      after,
		Description:       input.Description,
		OrderID:           input.OrderID,
		CouponCode:        input.CouponCode,
		ExternalPaymentID: input.ExternalPaymentID,
	}

	if err := repo.UpdateBalance(ctx, account.ID, after); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet transaction")
	}
	account.BalancePaise = after
	return txn, nil
}

func (s *service) Transfer(ctx context.Context, input TransferInput) error {
	if input.AmountPaise <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer amount must be positive")
	}
	if input.From == input.To {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer endpoints must differ")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		accounts, err := repo.LockAccountsForOwners(ctx, []OwnerRef{input.From, input.To})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet accounts")
		}
		from, to, err := splitPair(accounts, input.From, input.To)
		if err != nil {
			return err
		}

		if _, err := s.applyLocked(ctx, repo, from, EntryInput{
			OwnerType:   input.From.OwnerType,
			OwnerID:     input.From.OwnerID,
			Type:        enums.TransactionTypeDebit,
			Category:    input.Category,
			AmountPaise: input.AmountPaise,
			Description: input.Description,
			OrderID:     input.OrderID,
		}); err != nil {
			return err
		}
		_, err = s.applyLocked(ctx, repo, to, EntryInput{
			OwnerType:   input.To.OwnerType,
			OwnerID:     input.To.OwnerID,
			Type:        enums.TransactionTypeCredit,
			Category:    input.Category,
			AmountPaise: input.AmountPaise,
			Description: input.Description,
			OrderID:     input.OrderID,
		})
		return err
	})
}

// SettleOrderTx records every money leg for a completed order inside the
// caller's transaction. Material orders pay the requester from the collector;
// service orders reverse the direction. Commission always debits the
// collector.
func (s *service) SettleOrderTx(ctx context.Context, tx *gorm.DB, input SettlementInput) (*Settlement, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for settlement")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CollectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collector id required")
	}
	if input.TotalAmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	requesterRef := OwnerRef{OwnerType: enums.OwnerTypeRequester, OwnerID: input.RequesterID}
	collectorRef := OwnerRef{OwnerType: enums.OwnerTypeCollector, OwnerID: input.CollectorID}

	// Accounts are provisioned lazily, so a party who never opened a wallet
	// still settles; the fresh row starts at zero inside this transaction.
	for _, ref := range []OwnerRef{requesterRef, collectorRef} {
		if _, err := s.ensureAccount(ctx, repo, ref.OwnerType, ref.OwnerID); err != nil {
			return nil, err
		}
	}

	accounts, err := repo.LockAccountsForOwners(ctx, []OwnerRef{requesterRef, collectorRef})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock settlement accounts")
	}
	requester, collector, err := splitPair(accounts, requesterRef, collectorRef)
	if err != nil {
		return nil, err
	}

	commissionPaise := s.commission.Fee(input.TotalAmountPaise)
	orderID := input.OrderID
	floor := s.cfg.CollectorFloorPaise

	var payer, payee *models.WalletAccount
	var payerRef, payeeRef OwnerRef
	var payerFloor *int64
	switch input.OrderType {
	case enums.OrderTypeMaterial:
		payer, payee = collector, requester
		payerRef, payeeRef = collectorRef, requesterRef
		payerFloor = &floor
	case enums.OrderTypeService:
		payer, payee = requester, collector
		payerRef, payeeRef = requesterRef, collectorRef
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}

	// Collector exposure is checked up front so no partial legs are written
	// when the final commission debit would breach the floor. On service
	// orders the payment credit lands before the commission debit, so it
	// nets against the exposure.
	collectorExposure := commissionPaise
	if payer == collector {
		collectorExposure += input.TotalAmountPaise
	} else {
		collectorExposure -= input.TotalAmountPaise
	}
	if collector.BalancePaise-collectorExposure < floor {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "collector balance below settlement floor").
			WithDetails(map[string]any{
				"balance_paise":  collector.BalancePaise,
				"required_paise": collectorExposure,
				"floor_paise":    floor,
			})
	}

	payerTxn, err := s.applyLocked(ctx, repo, payer, EntryInput{
		OwnerType:            payerRef.OwnerType,
		OwnerID:              payerRef.OwnerID,
		Type:                 enums.TransactionTypeDebit,
		Category:             enums.TransactionCategoryPaymentSent,
		AmountPaise:          input.TotalAmountPaise,
		Description:          fmt.Sprintf("payment for order %s", orderID),
		OrderID:              &orderID,
		MinBalanceAfterPaise: payerFloor,
	})
	if err != nil {
		return nil, err
	}

	payeeTxn, err := s.applyLocked(ctx, repo, payee, EntryInput{
		OwnerType:   payeeRef.OwnerType,
		OwnerID:     payeeRef.OwnerID,
		Type:        enums.TransactionTypeCredit,
		Category:    enums.TransactionCategoryPaymentReceived,
		AmountPaise: input.TotalAmountPaise,
		Description: fmt.Sprintf("payment for order %s", orderID),
		OrderID:     &orderID,
	})
	if err != nil {
		return nil, err
	}

	commissionTxn, err := s.applyLocked(ctx, repo, collector, EntryInput{
		OwnerType:            collectorRef.OwnerType,
		OwnerID:              collectorRef.OwnerID,
		Type:                 enums.TransactionTypeDebit,
		Category:             enums.TransactionCategoryCommission,
		AmountPaise:          commissionPaise,
		Description:          fmt.Sprintf("platform commission for order %s", orderID),
		OrderID:              &orderID,
		MinBalanceAfterPaise: &floor,
	})
	if err != nil {
		return nil, err
	}

	return &Settlement{
		PayerTxn:        payerTxn,
		PayeeTxn:        payeeTxn,
		CommissionTxn:   commissionTxn,
		CommissionPaise: commissionPaise,
	}, nil
}

// CreditFromExternalPayment applies a recharge exactly once per gateway
// payment id. The bool result reports whether an earlier credit was replayed.
func (s *service) CreditFromExternalPayment(ctx context.Context, input ExternalCreditInput) (*models.WalletTransaction, bool, error) {
	if input.ExternalPaymentID == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "external payment id required")
	}
	if input.AmountPaise <= 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}

	if _, err := s.GetOrCreateAccount(ctx, input.OwnerType, input.OwnerID); err != nil {
		return nil, false, err
	}

	var txn *models.WalletTransaction
	replayed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindTransactionByExternalPaymentID(ctx, input.ExternalPaymentID)
		if err == nil {
			txn = existing
			replayed = true
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup external payment")
		}

		externalID := input.ExternalPaymentID
		applied, err := s.ApplyTx(ctx, tx, EntryInput{
			OwnerType:         input.OwnerType,
			OwnerID:           input.OwnerID,
			Type:              enums.TransactionTypeCredit,
			Category:          enums.TransactionCategoryRecharge,
			AmountPaise:       input.AmountPaise,
			Description:       input.Description,
			ExternalPaymentID: &externalID,
		})
		if err != nil {
			return err
		}
		txn = applied

		event := outbox.DomainEvent{
			EventType:     enums.EventWalletRecharged,
			AggregateType: enums.AggregateWalletTransaction,
			AggregateID:   applied.ID,
			Version:       1,
			Data: WalletRechargedEvent{
				TransactionID:     applied.ID,
				OwnerType:         input.OwnerType,
				OwnerID:           input.OwnerID,
				AmountPaise:       input.AmountPaise,
				ExternalPaymentID: input.ExternalPaymentID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		// A concurrent request inserted the same payment id between the
		// lookup and the insert; treat its row as ours.
		if dbpkg.IsUniqueViolation(err, externalPaymentConstraint) {
			existing, findErr := s.repo.FindTransactionByExternalPaymentID(ctx, input.ExternalPaymentID)
			if findErr != nil {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload external payment")
			}
			return existing, true, nil
		}
		return nil, false, err
	}
	return txn, replayed, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, input WithdrawalInput) (*models.PayoutRequest, error) {
	if input.AmountPaise < s.cfg.MinWithdrawalPaise {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal below minimum").
			WithDetails(map[string]any{
				"minimum_paise": s.cfg.MinWithdrawalPaise,
				"amount_paise":  input.AmountPaise,
			})
	}
	if input.BeneficiaryName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beneficiary name required")
	}
	if input.VPA == nil && (input.BankAccountNumber == nil || input.BankIFSC == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "either vpa or bank account with ifsc required")
	}

	if _, err := s.GetOrCreateAccount(ctx, input.OwnerType, input.OwnerID); err != nil {
		return nil, err
	}

	var payout *models.PayoutRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txn, err := s.ApplyTx(ctx, tx, EntryInput{
			OwnerType:   input.OwnerType,
			OwnerID:     input.OwnerID,
			Type:        enums.TransactionTypeDebit,
			Category:    enums.TransactionCategoryWithdrawal,
			Status:      enums.TransactionStatusPending,
			AmountPaise: input.AmountPaise,
			Description: "withdrawal to bank",
		})
		if err != nil {
			return err
		}

		payout = &models.PayoutRequest{
			AccountID:           txn.AccountID,
			WalletTransactionID: txn.ID,
			AmountPaise:         input.AmountPaise,
			BeneficiaryName:     input.BeneficiaryName,
			VPA:                 input.VPA,
			BankAccountNumber:   input.BankAccountNumber,
			BankIFSC:            input.BankIFSC,
			Status:              enums.PayoutStatusPending,
		}
		if err := s.repo.WithTx(tx).CreatePayoutRequest(ctx, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout request")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPayoutRequested,
			AggregateType: enums.AggregatePayoutRequest,
			AggregateID:   payout.ID,
			Version:       1,
			Data: PayoutRequestedEvent{
				PayoutRequestID: payout.ID,
				OwnerType:       input.OwnerType,
				OwnerID:         input.OwnerID,
				AmountPaise:     input.AmountPaise,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

func validateEntry(input EntryInput) error {
	if !input.OwnerType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid owner type")
	}
	if input.OwnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if input.AmountPaise <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction category")
	}
	if input.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	return nil
}

func splitPair(accounts []models.WalletAccount, first, second OwnerRef) (*models.WalletAccount, *models.WalletAccount, error) {
	var a, b *models.WalletAccount
	for i := range accounts {
		account := &accounts[i]
		ref := OwnerRef{OwnerType: account.OwnerType, OwnerID: account.OwnerID}
		switch ref {
		case first:
			a = account
		case second:
			b = account
		}
	}
	if a == nil || b == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet account not found")
	}
	return a, b, nil
}
