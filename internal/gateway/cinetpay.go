package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"time"

	"rent-backend/internal/models"
)

// CinetPayClient talks to the CinetPay hosted-checkout API, the primary
// processor for mobile-money payments. There is no official Go SDK, so
// the two endpoints are wrapped directly.
type CinetPayClient struct {
	apiKey  string
	siteID  string
	baseURL string
	http    *http.Client
}

func NewCinetPayClient(apiKey, siteID, baseURL string, timeout time.Duration) *CinetPayClient {
	return &CinetPayClient{
		apiKey:  apiKey,
		siteID:  siteID,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type cinetpayInitRequest struct {
	APIKey        string `json:"apikey"`
	SiteID        string `json:"site_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone_number"`
	NotifyURL     string `json:"notify_url"`
	ReturnURL     string `json:"return_url"`
	Channels      string `json:"channels"`
}

type cinetpayInitResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		PaymentURL   string `json:"payment_url"`
		PaymentToken string `json:"payment_token"`
	} `json:"data"`
}

type cinetpayCheckRequest struct {
	APIKey        string `json:"apikey"`
	SiteID        string `json:"site_id"`
	TransactionID string `json:"transaction_id"`
}

type cinetpayCheckResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status        string `json:"status"` // ACCEPTED, REFUSED, PENDING, ...
		PaymentMethod string `json:"payment_method"`
	} `json:"data"`
}

func (c *CinetPayClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	body := cinetpayInitRequest{
		APIKey:        c.apiKey,
		SiteID:        c.siteID,
		TransactionID: req.Reference,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		NotifyURL:     req.NotifyURL,
		ReturnURL:     req.ReturnURL,
		Channels:      "ALL",
	}

	var resp cinetpayInitResponse
	if err := c.post(ctx, "/payment", body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
	}

	// 201 = payment session created
	if resp.Code != "201" {
		return nil, fmt.Errorf("%w: create payment returned code %s (%s)", models.ErrGateway, resp.Code, resp.Message)
	}
	if resp.Data.PaymentURL == "" {
		return nil, fmt.Errorf("%w: create payment returned no payment URL", models.ErrGateway)
	}

	return &CreatePaymentResponse{
		PaymentURL:  resp.Data.PaymentURL,
		ProviderRef: resp.Data.PaymentToken,
	}, nil
}

func (c *CinetPayClient) CheckTransaction(ctx context.Context, q StatusQuery) (*TransactionStatus, error) {
	body := cinetpayCheckRequest{
		APIKey:        c.apiKey,
		SiteID:        c.siteID,
		TransactionID: q.Reference,
	}

	var resp cinetpayCheckResponse
	if err := c.post(ctx, "/payment/check", body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrVerificationInconclusive, err)
	}

	status := resp.Data.Status
	return &TransactionStatus{
		Accepted: status == "ACCEPTED",
		Terminal: status == "ACCEPTED" || status == "REFUSED" || status == "CANCELLED" || status == "EXPIRED",
		Status:   status,
		Method:   resp.Data.PaymentMethod,
	}, nil
}

func (c *CinetPayClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
