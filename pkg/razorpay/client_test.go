package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
)

func signHex(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := &Client{keySecret: "test-secret"}

	orderID := "order_abc123"
	paymentID := "pay_def456"
	valid := signHex(orderID+"|"+paymentID, "test-secret")

	if err := c.VerifyPaymentSignature(orderID, paymentID, valid); err != nil {
		t.Fatalf("expected valid signature to pass, got %v", err)
	}

	err := c.VerifyPaymentSignature(orderID, paymentID, "deadbeef")
	if err == nil {
		t.Fatalf("expected tampered signature to fail")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized code, got %v", err)
	}
}

func TestVerifyPaymentSignatureMissingFields(t *testing.T) {
	c := &Client{keySecret: "test-secret"}
	err := c.VerifyPaymentSignature("", "pay_def456", "sig")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := &Client{webhookSecret: "hook-secret"}

	body := []byte(`{"event":"payment.captured"}`)
	valid := signHex(string(body), "hook-secret")

	if err := c.VerifyWebhookSignature(body, valid); err != nil {
		t.Fatalf("expected valid webhook signature to pass, got %v", err)
	}
	if err := c.VerifyWebhookSignature(body, "deadbeef"); err == nil {
		t.Fatalf("expected tampered webhook signature to fail")
	}

	unset := &Client{}
	err := unset.VerifyWebhookSignature(body, valid)
	if err == nil {
		t.Fatalf("expected error when webhook secret is unset")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	c := &Client{keySecret: "test-secret"}
	_, err := c.CreateOrder(context.Background(), OrderCreateParams{AmountPaise: 0})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestOrderFromResponse(t *testing.T) {
	resp := map[string]interface{}{
		"id":       "order_abc123",
		"amount":   float64(50000),
		"currency": "INR",
		"receipt":  "rcpt-1",
		"status":   "created",
	}
	order := orderFromResponse(resp)
	if order.ID != "order_abc123" || order.AmountPaise != 50000 || order.Currency != "INR" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.Receipt != "rcpt-1" || order.Status != "created" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	if out := c.redact("webhook_signature", "abc123"); out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := c.redact("status", "created"); v != "created" {
		t.Fatalf("unexpected redaction for safe key")
	}
}
