package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"rent-backend/internal/models"
)

// RazorpayClient implements the gateway over Razorpay payment links, for
// deployments that collect rent by card/UPI instead of mobile money.
type RazorpayClient struct {
	client *razorpay.Client
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *RazorpayClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	data := map[string]interface{}{
		"amount":       req.Amount,
		"currency":     req.Currency,
		"description":  req.Description,
		"reference_id": req.Reference,
		"customer": map[string]interface{}{
			"name":    req.CustomerName,
			"email":   req.CustomerEmail,
			"contact": req.CustomerPhone,
		},
		"callback_url":    req.ReturnURL,
		"callback_method": "get",
	}

	link, err := r.client.PaymentLink.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create payment link: %v", models.ErrGateway, err)
	}

	url, _ := link["short_url"].(string)
	id, _ := link["id"].(string)
	if url == "" || id == "" {
		return nil, fmt.Errorf("%w: payment link response missing url or id", models.ErrGateway)
	}

	return &CreatePaymentResponse{
		PaymentURL:  url,
		ProviderRef: id,
	}, nil
}

func (r *RazorpayClient) CheckTransaction(ctx context.Context, q StatusQuery) (*TransactionStatus, error) {
	if q.ProviderRef == "" {
		return nil, fmt.Errorf("%w: no provider ref recorded for %s", models.ErrVerificationInconclusive, q.Reference)
	}

	link, err := r.client.PaymentLink.Fetch(q.ProviderRef, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrVerificationInconclusive, err)
	}

	status, _ := link["status"].(string) // created, paid, cancelled, expired

	ts := &TransactionStatus{
		Accepted: status == "paid",
		Terminal: status == "paid" || status == "cancelled" || status == "expired",
		Status:   status,
	}

	// Resolve the payment method from the captured payment, if listed
	if payments, ok := link["payments"].([]interface{}); ok && len(payments) > 0 {
		if p, ok := payments[0].(map[string]interface{}); ok {
			if paymentID, ok := p["payment_id"].(string); ok && paymentID != "" {
				if payment, err := r.client.Payment.Fetch(paymentID, nil, nil); err == nil {
					ts.Method, _ = payment["method"].(string)
				}
			}
		}
	}

	return ts, nil
}
