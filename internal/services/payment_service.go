package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rent-backend/internal/config"
	"rent-backend/internal/gateway"
	"rent-backend/internal/metrics"
	"rent-backend/internal/models"
)

// PaymentService opens payment sessions against the gateway. The split
// is not computed here; only the total due is known at initiation, the
// division happens at settlement time.
type PaymentService struct {
	payments PaymentStore
	leases   LeaseStore
	gateway  gateway.Client
	cfg      *config.Config
}

func NewPaymentService(payments PaymentStore, leases LeaseStore, gw gateway.Client, cfg *config.Config) *PaymentService {
	return &PaymentService{
		payments: payments,
		leases:   leases,
		gateway:  gw,
		cfg:      cfg,
	}
}

// InitiatePayment creates a PENDING payment for the lease's current due
// amount and returns the hosted checkout URL. The first payment on a
// lease bundles rent, deposit and the tenant fee; every later one is
// plain monthly rent.
func (s *PaymentService) InitiatePayment(ctx context.Context, req *models.InitiatePaymentRequest) (*models.InitiatePaymentResponse, error) {
	if req.LeaseID <= 0 {
		return nil, errors.New("lease_id is required")
	}
	if req.Phone == "" {
		return nil, errors.New("phone is required")
	}

	lease, err := s.leases.GetByID(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	paid, err := s.payments.HasSuccessfulPayment(ctx, lease.ID)
	if err != nil {
		return nil, err
	}

	kind := models.PaymentKindRent
	description := fmt.Sprintf("Monthly rent for lease #%d", lease.ID)
	if !paid {
		kind = models.PaymentKindDeposit
		description = fmt.Sprintf("Lease #%d signature: rent + deposit + service fee", lease.ID)
	}
	amount := AmountDue(kind, lease.MonthlyRent, lease.DepositAmount, s.cfg.Billing.TenantFee)

	payment := &models.Payment{
		LeaseID:    lease.ID,
		Reference:  fmt.Sprintf("PAY-%d-%d", lease.ID, time.Now().UnixNano()),
		Kind:       kind,
		Amount:     amount,
		PayerName:  req.Name,
		PayerEmail: req.Email,
		PayerPhone: req.Phone,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreatePayment(ctx, gateway.CreatePaymentRequest{
		Reference:     payment.Reference,
		Amount:        amount,
		Currency:      s.cfg.Billing.Currency,
		Description:   description,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		NotifyURL:     s.cfg.Gateway.NotifyURL,
		ReturnURL:     s.cfg.Gateway.ReturnURL,
	})
	if err != nil {
		// The local row stays PENDING; the reconciliation pass will
		// resolve it if the session was created gateway-side after all.
		log.Printf("[Payment] Gateway session failed for %s: %v", payment.Reference, err)
		return nil, err
	}

	if err := s.payments.SetProviderRef(ctx, payment.Reference, session.ProviderRef); err != nil {
		log.Printf("[Payment] Failed to store provider ref for %s: %v", payment.Reference, err)
	}

	metrics.PaymentsInitiatedTotal.Inc()
	log.Printf("[Payment] Initiated %s (%s, %d %s) for lease %d",
		payment.Reference, kind, amount, s.cfg.Billing.Currency, lease.ID)

	return &models.InitiatePaymentResponse{
		PaymentURL: session.PaymentURL,
		PaymentID:  payment.ID,
		Reference:  payment.Reference,
		Amount:     amount,
		Currency:   s.cfg.Billing.Currency,
	}, nil
}

// GetPayment returns a payment by reference (status polling)
func (s *PaymentService) GetPayment(ctx context.Context, reference string) (*models.Payment, error) {
	return s.payments.GetByReference(ctx, reference)
}
