package controllers

import (
	"fmt"
	"net/http"

	"github.com/scraploop/scraploop-backend/api/responses"
	"github.com/scraploop/scraploop-backend/api/validators"
	"github.com/scraploop/scraploop-backend/internal/coupons"
	"github.com/scraploop/scraploop-backend/internal/wallet"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/razorpay"
)

// WalletProfile returns the caller's balance and recent transactions.
func WalletProfile(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerType, ownerID, err := walletOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Profile(r.Context(), ownerType, ownerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type rechargeCreateRequest struct {
	AmountPaise int64 `json:"amount_paise" validate:"required,gt=0"`
}

type rechargeCreateResponse struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// WalletRechargeCreate opens a payment intent with the gateway. The wallet is
// only credited after the client completes payment and calls verify.
func WalletRechargeCreate(gateway *razorpay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerType, ownerID, err := walletOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway unavailable"))
			return
		}

		var req rechargeCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := gateway.CreateOrder(r.Context(), razorpay.OrderCreateParams{
			AmountPaise: req.AmountPaise,
			Receipt:     fmt.Sprintf("recharge-%s", ownerID),
			Notes: map[string]string{
				"owner_type": string(ownerType),
				"owner_id":   ownerID.String(),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rechargeCreateResponse{
			GatewayOrderID: order.ID,
			AmountPaise:    order.AmountPaise,
			Currency:       order.Currency,
			KeyID:          gateway.KeyID(),
		})
	}
}

type rechargeVerifyRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature        string `json:"razorpay_signature" validate:"required"`
	AmountPaise      int64  `json:"amount_paise" validate:"required,gt=0"`
}

type rechargeVerifyResponse struct {
	Transaction any  `json:"transaction"`
	Replayed    bool `json:"replayed"`
}

// WalletRechargeVerify checks the gateway signature and credits the wallet.
// Replays of the same payment id return the recorded transaction.
func WalletRechargeVerify(gateway *razorpay.Client, svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerType, ownerID, err := walletOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway unavailable"))
			return
		}

		var req rechargeVerifyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := gateway.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, replayed, err := svc.CreditFromExternalPayment(r.Context(), wallet.ExternalCreditInput{
			OwnerType:         ownerType,
			OwnerID:           ownerID,
			AmountPaise:       req.AmountPaise,
			ExternalPaymentID: req.GatewayPaymentID,
			Description:       "wallet recharge",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rechargeVerifyResponse{Transaction: txn, Replayed: replayed})
	}
}

type withdrawRequest struct {
	AmountPaise       int64   `json:"amount_paise" validate:"required,gt=0"`
	BeneficiaryName   string  `json:"beneficiary_name" validate:"required"`
	VPA               *string `json:"vpa,omitempty"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`
	BankIFSC          *string `json:"bank_ifsc,omitempty"`
}

// WalletWithdraw debits the wallet and opens a payout request.
func WalletWithdraw(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerType, ownerID, err := walletOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req withdrawRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.RequestWithdrawal(r.Context(), wallet.WithdrawalInput{
			OwnerType:         ownerType,
			OwnerID:           ownerID,
			AmountPaise:       req.AmountPaise,
			BeneficiaryName:   req.BeneficiaryName,
			VPA:               req.VPA,
			BankAccountNumber: req.BankAccountNumber,
			BankIFSC:          req.BankIFSC,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payout)
	}
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyCoupon redeems a coupon code into the caller's wallet.
func ApplyCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerType, ownerID, err := walletOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req applyCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redemption, err := svc.Redeem(r.Context(), coupons.RedeemInput{
			Code:      validators.SanitizeString(req.Code, 64),
			OwnerType: ownerType,
			OwnerID:   ownerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redemption)
	}
}

// AvailableCoupons lists coupons the caller can still redeem.
func AvailableCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerType, ownerID, err := walletOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListAvailable(r.Context(), ownerType, ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"coupons": list})
	}
}
