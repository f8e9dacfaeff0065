package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rent-backend/internal/gateway"
	"rent-backend/internal/metrics"
	"rent-backend/internal/models"
)

// WebhookVerifier resolves gateway delivery notifications. Webhook
// payloads carry only the transaction reference worth trusting; the
// actual status is always re-fetched server-to-server before any ledger
// effect is applied.
type WebhookVerifier struct {
	payments   PaymentStore
	settlement *SettlementService
	gateway    gateway.Client
}

func NewWebhookVerifier(payments PaymentStore, settlement *SettlementService, gw gateway.Client) *WebhookVerifier {
	return &WebhookVerifier{
		payments:   payments,
		settlement: settlement,
		gateway:    gw,
	}
}

// HandleNotification verifies and resolves one notification. The error
// is for logging and metrics only; the HTTP handler acks the delivery
// regardless, and unresolved transactions are left PENDING for the
// gateway's redelivery or the reconciliation pass.
func (v *WebhookVerifier) HandleNotification(ctx context.Context, reference string) error {
	payment, err := v.payments.GetByReference(ctx, reference)
	if err != nil {
		metrics.WebhooksReceivedTotal.WithLabelValues("unknown").Inc()
		return err
	}

	// Redeliveries for a resolved payment need no gateway round-trip
	if payment.Status != models.PaymentStatusPending {
		metrics.WebhooksReceivedTotal.WithLabelValues("duplicate").Inc()
		log.Printf("[Webhook] %s already %s, ignoring redelivery", reference, payment.Status)
		return nil
	}

	status, err := v.gateway.CheckTransaction(ctx, gateway.StatusQuery{
		Reference:   reference,
		ProviderRef: payment.ProviderRef,
	})
	if err != nil {
		metrics.WebhooksReceivedTotal.WithLabelValues("inconclusive").Inc()
		log.Printf("[Webhook] Verification failed for %s: %v", reference, err)
		if errors.Is(err, models.ErrVerificationInconclusive) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrVerificationInconclusive, err)
	}

	switch {
	case status.Accepted:
		outcome, err := v.settlement.Settle(ctx, reference, status.Method)
		if err != nil {
			metrics.WebhooksReceivedTotal.WithLabelValues("error").Inc()
			return err
		}
		if outcome.AlreadySettled {
			metrics.WebhooksReceivedTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.WebhooksReceivedTotal.WithLabelValues("settled").Inc()
		}
		return nil

	case status.Terminal:
		if err := v.settlement.MarkFailed(ctx, reference, status.Status); err != nil {
			metrics.WebhooksReceivedTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.WebhooksReceivedTotal.WithLabelValues("failed").Inc()
		return nil

	default:
		// Still pending gateway-side. Nothing to record; a later
		// delivery will carry the final state.
		metrics.WebhooksReceivedTotal.WithLabelValues("inconclusive").Inc()
		log.Printf("[Webhook] %s still %s gateway-side", reference, status.Status)
		return nil
	}
}

// ReconcileResult summarizes one reconciliation pass
type ReconcileResult struct {
	Checked   int `json:"checked"`
	Settled   int `json:"settled"`
	Failed    int `json:"failed"`
	StillOpen int `json:"still_open"`
}

// Reconcile re-runs verification for PENDING payments older than maxAge.
// It covers sessions whose webhook never arrived (abandoned checkouts,
// delivery failures, timed-out initiations).
func (v *WebhookVerifier) Reconcile(ctx context.Context, maxAge time.Duration, limit int) (*ReconcileResult, error) {
	cutoff := time.Now().Add(-maxAge)
	stale, err := v.payments.GetStalePending(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	for _, p := range stale {
		result.Checked++
		if err := v.HandleNotification(ctx, p.Reference); err != nil {
			result.StillOpen++
			continue
		}

		resolved, err := v.payments.GetByReference(ctx, p.Reference)
		if err != nil {
			result.StillOpen++
			continue
		}
		switch resolved.Status {
		case models.PaymentStatusSuccess:
			result.Settled++
		case models.PaymentStatusFailed:
			result.Failed++
		default:
			result.StillOpen++
		}
	}

	log.Printf("[Reconcile] Checked %d stale payments: %d settled, %d failed, %d still open",
		result.Checked, result.Settled, result.Failed, result.StillOpen)
	return result, nil
}
