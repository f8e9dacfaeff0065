package gateway

import (
	"context"
	"fmt"
	"time"

	"rent-backend/internal/config"
)

// Client wraps the two calls this engine makes against the external
// payment processor. Implementations must bound their own timeouts; a
// timed-out CreatePayment leaves the local payment row PENDING, and a
// timed-out CheckTransaction means the notification stays unresolved.
type Client interface {
	// CreatePayment opens a hosted checkout session and returns the URL
	// the payer is redirected to.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)

	// CheckTransaction fetches the authoritative status of a transaction
	// server-to-server. Inbound webhook fields are never trusted; this
	// call is the only source of truth.
	CheckTransaction(ctx context.Context, q StatusQuery) (*TransactionStatus, error)
}

type CreatePaymentRequest struct {
	Reference     string // our unique transaction id, echoed back in webhooks
	Amount        int64  // smallest currency unit
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	NotifyURL     string
	ReturnURL     string
}

type CreatePaymentResponse struct {
	PaymentURL  string
	ProviderRef string // gateway-side id for this transaction
}

type StatusQuery struct {
	Reference   string
	ProviderRef string
}

type TransactionStatus struct {
	Accepted bool   // payment captured/accepted
	Terminal bool   // gateway reports a final state (accepted or refused)
	Status   string // raw provider status, for logs
	Method   string // MOBILE_MONEY, CARD, ... as reported by the provider
}

// New builds the configured provider client.
func New(cfg *config.Config) (Client, error) {
	timeout := time.Duration(cfg.Gateway.TimeoutS) * time.Second

	switch cfg.Gateway.Provider {
	case "cinetpay":
		return NewCinetPayClient(cfg.Gateway.APIKey, cfg.Gateway.SiteID, cfg.Gateway.BaseURL, timeout), nil
	case "razorpay":
		return NewRazorpayClient(cfg.Gateway.KeyID, cfg.Gateway.KeySecret), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown gateway provider %q", cfg.Gateway.Provider)
	}
}
