package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rent-backend/internal/config"
	"rent-backend/internal/models"
)

const (
	ownerID = 100
	agentID = 101
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Billing.PlatformRateBps = 500
	cfg.Billing.AgentRateBps = 500
	cfg.Billing.TenantFee = 20000
	cfg.Billing.Currency = "XAF"
	cfg.Gateway.NotifyURL = "https://api.example.test/payments/webhook"
	cfg.Gateway.ReturnURL = "https://app.example.test/payments/done"
	return cfg
}

// seedLease inserts lease 1 on property 10 owned by user 100
func seedLease(f *fakeStore, active bool) {
	status := models.LeaseStatusPendingSignature
	if active {
		status = models.LeaseStatusActive
	}
	f.leases[1] = &models.Lease{
		ID:            1,
		PropertyID:    10,
		OwnerID:       ownerID,
		TenantID:      200,
		MonthlyRent:   testRent,
		DepositAmount: testDeposit,
		IsActive:      active,
		Status:        status,
	}
	f.addUser(ownerID)
	f.addUser(agentID)
}

func seedPayment(f *fakeStore, reference string, kind models.PaymentKind) {
	amount := AmountDue(kind, testRent, testDeposit, testFee)
	f.payments[reference] = &models.Payment{
		ID:        len(f.payments) + 1,
		LeaseID:   1,
		Reference: reference,
		Kind:      kind,
		Amount:    amount,
		Status:    models.PaymentStatusPending,
		CreatedAt: time.Now(),
	}
}

func newSettlementService(f *fakeStore) *SettlementService {
	return NewSettlementService(f, f, f, testConfig())
}

func TestSettleFirstPayment(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	outcome, err := svc.Settle(context.Background(), "PAY-1-1", "MOBILE_MONEY")
	require.NoError(t, err)

	assert.False(t, outcome.AlreadySettled)
	assert.True(t, outcome.LeaseActivated)
	assert.Equal(t, int64(25000), outcome.Split.PlatformShare)
	assert.Equal(t, int64(95000), outcome.Split.OwnerShare)
	assert.Equal(t, int64(200000), outcome.Split.EscrowCredit)

	assert.Equal(t, int64(95000), f.walletOf(ownerID))
	assert.Equal(t, int64(200000), f.escrowOf(ownerID))

	lease, _ := f.GetByID(context.Background(), 1)
	assert.True(t, lease.IsActive)
	assert.Equal(t, models.LeaseStatusActive, lease.Status)

	p, _ := f.GetByReference(context.Background(), "PAY-1-1")
	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
	assert.Equal(t, "MOBILE_MONEY", p.Method)
	assert.NotNil(t, p.CompletedAt)
}

func TestSettleFirstPaymentWithAgent(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	f.missions[10] = &models.Mission{ID: 1, PropertyID: 10, AgentID: agentID, Status: models.MissionStatusCompleted}
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	outcome, err := svc.Settle(context.Background(), "PAY-1-1", "CARD")
	require.NoError(t, err)

	assert.Equal(t, int64(5000), outcome.Split.AgentShare)
	assert.Equal(t, int64(90000), outcome.Split.OwnerShare)
	assert.Equal(t, int64(5000), f.walletOf(agentID))
	assert.Equal(t, int64(90000), f.walletOf(ownerID))
}

func TestSettleIgnoresCancelledMission(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	f.missions[10] = &models.Mission{ID: 1, PropertyID: 10, AgentID: agentID, Status: models.MissionStatusCancelled}
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	outcome, err := svc.Settle(context.Background(), "PAY-1-1", "CARD")
	require.NoError(t, err)

	assert.Equal(t, int64(0), outcome.Split.AgentShare)
	assert.Equal(t, int64(0), f.walletOf(agentID))
	assert.Equal(t, int64(95000), f.walletOf(ownerID))
}

func TestSettleRecurringPayment(t *testing.T) {
	f := newFakeStore()
	seedLease(f, true)
	// An agent mission exists but recurring payments pay no commission
	f.missions[10] = &models.Mission{ID: 1, PropertyID: 10, AgentID: agentID, Status: models.MissionStatusCompleted}
	seedPayment(f, "PAY-1-2", models.PaymentKindRent)
	svc := newSettlementService(f)

	outcome, err := svc.Settle(context.Background(), "PAY-1-2", "MOBILE_MONEY")
	require.NoError(t, err)

	assert.False(t, outcome.LeaseActivated)
	assert.Equal(t, int64(5000), outcome.Split.PlatformShare)
	assert.Equal(t, int64(0), outcome.Split.AgentShare)
	assert.Equal(t, int64(95000), outcome.Split.OwnerShare)
	assert.Equal(t, int64(0), outcome.Split.EscrowCredit)
	assert.Equal(t, int64(0), f.escrowOf(ownerID))
}

func TestSettleIdempotent(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	first, err := svc.Settle(context.Background(), "PAY-1-1", "MOBILE_MONEY")
	require.NoError(t, err)
	require.False(t, first.AlreadySettled)

	second, err := svc.Settle(context.Background(), "PAY-1-1", "MOBILE_MONEY")
	require.NoError(t, err)
	assert.True(t, second.AlreadySettled)
	assert.Equal(t, first.Split, second.Split)

	// Credited exactly once
	assert.Equal(t, int64(95000), f.walletOf(ownerID))
	assert.Equal(t, int64(200000), f.escrowOf(ownerID))
}

func TestSettleUnknownReference(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	svc := newSettlementService(f)

	_, err := svc.Settle(context.Background(), "PAY-9-9", "CARD")
	assert.ErrorIs(t, err, models.ErrPaymentNotFound)
}

func TestSettleRefusesFailedPayment(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	require.NoError(t, svc.MarkFailed(context.Background(), "PAY-1-1", "REFUSED"))

	_, err := svc.Settle(context.Background(), "PAY-1-1", "CARD")
	assert.ErrorIs(t, err, models.ErrPaymentFinal)

	// No effects from the refused transition
	assert.Equal(t, int64(0), f.walletOf(ownerID))
	lease, _ := f.GetByID(context.Background(), 1)
	assert.False(t, lease.IsActive)
}

func TestMarkFailedNoLedgerEffect(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	require.NoError(t, svc.MarkFailed(context.Background(), "PAY-1-1", "EXPIRED"))

	p, _ := f.GetByReference(context.Background(), "PAY-1-1")
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Equal(t, "EXPIRED", p.FailureReason)
	assert.Equal(t, int64(0), f.walletOf(ownerID))
	assert.Equal(t, int64(0), f.escrowOf(ownerID))

	// Repeating is harmless
	assert.NoError(t, svc.MarkFailed(context.Background(), "PAY-1-1", "EXPIRED"))
}

func TestMarkFailedNeverOverwritesSettled(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	_, err := svc.Settle(context.Background(), "PAY-1-1", "CARD")
	require.NoError(t, err)

	err = svc.MarkFailed(context.Background(), "PAY-1-1", "REFUSED")
	assert.ErrorIs(t, err, models.ErrPaymentFinal)

	p, _ := f.GetByReference(context.Background(), "PAY-1-1")
	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
}

func TestSettleConcurrentDuplicates(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	svc := newSettlementService(f)

	const n = 16
	outcomes := make([]*models.SettlementOutcome, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = svc.Settle(context.Background(), "PAY-1-1", "MOBILE_MONEY")
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if !outcomes[i].AlreadySettled {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh, "exactly one caller should perform the settlement")

	assert.Equal(t, int64(95000), f.walletOf(ownerID))
	assert.Equal(t, int64(200000), f.escrowOf(ownerID))
}
