package wallet

import (
	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// OwnerRef identifies one wallet owner.
type OwnerRef struct {
	OwnerType enums.OwnerType
	OwnerID   uuid.UUID
}

// EntryInput describes one ledger entry to apply against an account.
type EntryInput struct {
	OwnerType         enums.OwnerType
	OwnerID           uuid.UUID
	Type              enums.TransactionType
	Category          enums.TransactionCategory
	Status            enums.TransactionStatus
	AmountPaise       int64
	Description       string
	OrderID           *uuid.UUID
	CouponCode        *string
	ExternalPaymentID *string

	// MinBalanceAfterPaise overrides the floor a debit may drain the account
	// to. Nil means the balance must stay non-negative.
	MinBalanceAfterPaise *int64
}

// TransferInput moves an amount between two wallet owners atomically.
type TransferInput struct {
	From        OwnerRef
	To          OwnerRef
	AmountPaise int64
	Category    enums.TransactionCategory
	Description string
	OrderID     *uuid.UUID
}

// SettlementInput carries the order fields settlement needs. The caller owns
// the surrounding transaction so the terminal order write and all ledger legs
// commit or roll back together.
type SettlementInput struct {
	OrderID          uuid.UUID
	OrderType        enums.OrderType
	RequesterID      uuid.UUID
	CollectorID      uuid.UUID
	TotalAmountPaise int64
}

// Settlement reports the ledger legs recorded for a completed order.
type Settlement struct {
	PayerTxn        *models.WalletTransaction
	PayeeTxn        *models.WalletTransaction
	CommissionTxn   *models.WalletTransaction
	CommissionPaise int64
}

// ExternalCreditInput credits a wallet from a verified gateway payment.
type ExternalCreditInput struct {
	OwnerType         enums.OwnerType
	OwnerID           uuid.UUID
	AmountPaise       int64
	ExternalPaymentID string
	Description       string
}

// WithdrawalInput debits a wallet and opens a payout request.
type WithdrawalInput struct {
	OwnerType         enums.OwnerType
	OwnerID           uuid.UUID
	AmountPaise       int64
	BeneficiaryName   string
	VPA               *string
	BankAccountNumber *string
	BankIFSC          *string
}

// Profile aggregates the wallet view returned to clients.
type Profile struct {
	Account      *models.WalletAccount      `json:"account"`
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}
