package services

import (
	"context"
	"errors"
	"log"

	"rent-backend/internal/cache"
	"rent-backend/internal/config"
	"rent-backend/internal/metrics"
	"rent-backend/internal/models"
)

// SettlementService turns a verified payment into ledger effects: the
// payment flips to SUCCESS with its split, balances are credited and the
// lease activates on its first payment. Every call is idempotent; the
// effects of one payment are applied exactly once no matter how many
// times the gateway redelivers its notification.
type SettlementService struct {
	payments PaymentStore
	leases   LeaseStore
	missions MissionStore
	cfg      *config.Config
}

func NewSettlementService(payments PaymentStore, leases LeaseStore, missions MissionStore, cfg *config.Config) *SettlementService {
	return &SettlementService{
		payments: payments,
		leases:   leases,
		missions: missions,
		cfg:      cfg,
	}
}

// Settle commits the settlement for a confirmed payment.
//
// The lookup ahead of the transaction is the cheap idempotency check: a
// payment that already settled returns an AlreadySettled outcome without
// touching the gateway's split again. The authoritative guard is the
// conditional update inside CommitSettlement; when two verifiers race,
// the loser surfaces here as ErrAlreadySettled and is reported the same
// way.
func (s *SettlementService) Settle(ctx context.Context, reference, method string) (*models.SettlementOutcome, error) {
	payment, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch payment.Status {
	case models.PaymentStatusSuccess:
		return &models.SettlementOutcome{
			Reference: reference,
			Split: models.Split{
				PlatformShare: payment.PlatformShare,
				AgentShare:    payment.AgentShare,
				OwnerShare:    payment.OwnerShare,
				EscrowCredit:  payment.EscrowCredit,
			},
			AlreadySettled: true,
		}, nil
	case models.PaymentStatusFailed:
		return nil, models.ErrPaymentFinal
	}

	lease, err := s.leases.GetByID(ctx, payment.LeaseID)
	if err != nil {
		return nil, err
	}

	agentID := 0
	hasAgent := false
	if payment.Kind == models.PaymentKindDeposit {
		mission, err := s.missions.GetActiveByProperty(ctx, lease.PropertyID)
		if err != nil {
			return nil, err
		}
		if mission != nil {
			agentID = mission.AgentID
			hasAgent = true
		}
	}

	split := ComputeSplit(payment.Kind,
		lease.MonthlyRent, lease.DepositAmount,
		s.cfg.Billing.TenantFee,
		s.cfg.Billing.PlatformRateBps, s.cfg.Billing.AgentRateBps,
		hasAgent,
	)

	activate := payment.Kind == models.PaymentKindDeposit && !lease.IsActive

	err = s.payments.CommitSettlement(ctx, &models.Settlement{
		Reference:     reference,
		Method:        method,
		Split:         split,
		LeaseID:       lease.ID,
		OwnerID:       lease.OwnerID,
		AgentID:       agentID,
		ActivateLease: activate,
	})
	if errors.Is(err, models.ErrAlreadySettled) {
		metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
		return &models.SettlementOutcome{Reference: reference, Split: split, AlreadySettled: true}, nil
	}
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.SettlementsTotal.WithLabelValues("settled").Inc()
	metrics.SettledAmountTotal.Add(float64(payment.Amount))
	cache.InvalidatePayment(ctx, reference)

	log.Printf("[Settlement] %s settled: owner=%d agent=%d platform=%d escrow=%d (lease %d, activated=%v)",
		reference, split.OwnerShare, split.AgentShare, split.PlatformShare, split.EscrowCredit,
		lease.ID, activate)

	return &models.SettlementOutcome{
		Reference:      reference,
		Split:          split,
		LeaseActivated: activate,
	}, nil
}

// MarkFailed records that the gateway reported a terminal non-success
// state. No balance moves; a settled payment is never overwritten.
func (s *SettlementService) MarkFailed(ctx context.Context, reference, reason string) error {
	err := s.payments.MarkFailed(ctx, reference, reason)
	if err != nil {
		return err
	}
	cache.InvalidatePayment(ctx, reference)
	log.Printf("[Settlement] %s marked failed: %s", reference, reason)
	return nil
}
