package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	rzp "github.com/razorpay/razorpay-go"
	rzputils "github.com/razorpay/razorpay-go/utils"

	"github.com/scraploop/scraploop-backend/pkg/config"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/logger"
)

var (
	errKeyIDRequiredErr   = errors.New("razorpay key id is required")
	errKeySecretRequired  = errors.New("razorpay key secret is required")
	errLoggerRequired     = errors.New("razorpay logger is required")
	errWebhookSecretUnset = errors.New("razorpay webhook secret is required")
)

// Client exposes Razorpay primitives with centralized logging, error mapping,
// and signature verification.
type Client struct {
	sdk           *rzp.Client
	keyID         string
	keySecret     string
	webhookSecret string
	logger        *logger.Logger
}

// Order is the subset of a Razorpay order the wallet flow needs.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
}

// OrderCreateParams describes a gateway order for a wallet recharge.
type OrderCreateParams struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequiredErr
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	c := &Client{
		sdk:           rzp.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		logger:        logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key id, safe to hand to clients for checkout.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// CreateOrder opens a gateway order for the given amount in paise.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*Order, error) {
	if params.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recharge amount must be positive")
	}
	currency := strings.TrimSpace(params.Currency)
	if currency == "" {
		currency = "INR"
	}

	data := map[string]interface{}{
		"amount":   params.AmountPaise,
		"currency": currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		notes := make(map[string]interface{}, len(params.Notes))
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount_paise": params.AmountPaise,
		"currency":     currency,
		"receipt":      params.Receipt,
	})

	resp, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay create order failed")
	}

	order := orderFromResponse(resp)
	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// VerifyPaymentSignature checks the checkout callback signature. A mismatch
// means the payment attestation cannot be trusted.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(paymentID) == "" || strings.TrimSpace(signature) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature are required")
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !rzputils.VerifyPaymentSignature(params, signature, c.keySecret) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
	}
	return nil
}

// VerifyWebhookSignature checks a webhook body against the configured secret.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) error {
	if c.webhookSecret == "" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errWebhookSecretUnset, "webhook verification unavailable")
	}
	if !rzputils.VerifyWebhookSignature(string(body), signature, c.webhookSecret) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature verification failed")
	}
	return nil
}

func orderFromResponse(resp map[string]interface{}) *Order {
	order := &Order{}
	if v, ok := resp["id"].(string); ok {
		order.ID = v
	}
	if v, ok := resp["amount"].(float64); ok {
		order.AmountPaise = int64(v)
	}
	if v, ok := resp["currency"].(string); ok {
		order.Currency = v
	}
	if v, ok := resp["receipt"].(string); ok {
		order.Receipt = v
	}
	if v, ok := resp["status"].(string); ok {
		order.Status = v
	}
	return order
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "signature", "email", "contact", "vpa"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
