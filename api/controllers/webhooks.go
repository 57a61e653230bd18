package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/api/responses"
	"github.com/scraploop/scraploop-backend/internal/wallet"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/razorpay"
)

const razorpaySignatureHeader = "X-Razorpay-Signature"

const maxWebhookBodyBytes = 1 << 20

type razorpayWebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string            `json:"id"`
				Amount int64             `json:"amount"`
				Notes  map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// RazorpayWebhook handles gateway callbacks. Captured payments credit the
// wallet through the same idempotent path as checkout verification, so the
// webhook and the client-side verify can both land without double-crediting.
func RazorpayWebhook(gateway *razorpay.Client, svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unreadable webhook body"))
			return
		}
		if err := gateway.VerifyWebhookSignature(body, r.Header.Get(razorpaySignatureHeader)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var event razorpayWebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "malformed webhook payload"))
			return
		}
		if event.Event != "payment.captured" {
			responses.WriteSuccess(w, map[string]any{"status": "ignored"})
			return
		}

		entity := event.Payload.Payment.Entity
		ownerType, typeErr := enums.ParseOwnerType(entity.Notes["owner_type"])
		ownerID, idErr := uuid.Parse(entity.Notes["owner_id"])
		if typeErr != nil || idErr != nil {
			// Not a wallet recharge; acknowledge so the gateway stops retrying.
			responses.WriteSuccess(w, map[string]any{"status": "ignored"})
			return
		}

		txn, replayed, err := svc.CreditFromExternalPayment(r.Context(), wallet.ExternalCreditInput{
			OwnerType:         ownerType,
			OwnerID:           ownerID,
			AmountPaise:       entity.Amount,
			ExternalPaymentID: entity.ID,
			Description:       "wallet recharge",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"status":         "processed",
			"transaction_id": txn.ID,
			"replayed":       replayed,
		})
	}
}
