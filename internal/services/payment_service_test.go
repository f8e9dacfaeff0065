package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rent-backend/internal/gateway"
	"rent-backend/internal/models"
)

// downGateway rejects every call, as if the processor were unreachable
type downGateway struct{}

func (downGateway) CreatePayment(ctx context.Context, req gateway.CreatePaymentRequest) (*gateway.CreatePaymentResponse, error) {
	return nil, models.ErrGateway
}

func (downGateway) CheckTransaction(ctx context.Context, q gateway.StatusQuery) (*gateway.TransactionStatus, error) {
	return nil, models.ErrVerificationInconclusive
}

func TestInitiateFirstPayment(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	gw := gateway.NewMockClient()
	svc := NewPaymentService(f, f, gw, testConfig())

	resp, err := svc.InitiatePayment(context.Background(), &models.InitiatePaymentRequest{
		LeaseID: 1, Name: "Ama K", Phone: "+237600000001", Email: "ama@example.test",
	})
	require.NoError(t, err)

	// rent + deposit + tenant fee
	assert.Equal(t, int64(320000), resp.Amount)
	assert.Equal(t, "XAF", resp.Currency)
	assert.True(t, strings.HasPrefix(resp.Reference, "PAY-1-"))
	assert.NotEmpty(t, resp.PaymentURL)

	p, err := f.GetByReference(context.Background(), resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentKindDeposit, p.Kind)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, "mock_"+resp.Reference, p.ProviderRef)
	assert.Equal(t, int64(0), p.OwnerShare, "split is not computed at initiation")
}

func TestInitiateRecurringPayment(t *testing.T) {
	f := newFakeStore()
	seedLease(f, true)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	f.payments["PAY-1-1"].Status = models.PaymentStatusSuccess
	gw := gateway.NewMockClient()
	svc := NewPaymentService(f, f, gw, testConfig())

	resp, err := svc.InitiatePayment(context.Background(), &models.InitiatePaymentRequest{
		LeaseID: 1, Name: "Ama K", Phone: "+237600000001",
	})
	require.NoError(t, err)

	assert.Equal(t, testRent, resp.Amount)

	p, _ := f.GetByReference(context.Background(), resp.Reference)
	assert.Equal(t, models.PaymentKindRent, p.Kind)
}

func TestInitiateFailedPaymentDoesNotCountAsFirst(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	seedPayment(f, "PAY-1-1", models.PaymentKindDeposit)
	f.payments["PAY-1-1"].Status = models.PaymentStatusFailed
	gw := gateway.NewMockClient()
	svc := NewPaymentService(f, f, gw, testConfig())

	resp, err := svc.InitiatePayment(context.Background(), &models.InitiatePaymentRequest{
		LeaseID: 1, Name: "Ama K", Phone: "+237600000001",
	})
	require.NoError(t, err)

	// Only a settled payment moves the lease past its first payment
	assert.Equal(t, int64(320000), resp.Amount)
	p, _ := f.GetByReference(context.Background(), resp.Reference)
	assert.Equal(t, models.PaymentKindDeposit, p.Kind)
}

func TestInitiateLeaseNotFound(t *testing.T) {
	f := newFakeStore()
	svc := NewPaymentService(f, f, gateway.NewMockClient(), testConfig())

	_, err := svc.InitiatePayment(context.Background(), &models.InitiatePaymentRequest{
		LeaseID: 42, Name: "Ama K", Phone: "+237600000001",
	})
	assert.ErrorIs(t, err, models.ErrLeaseNotFound)
}

func TestInitiateMissingPhone(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	svc := NewPaymentService(f, f, gateway.NewMockClient(), testConfig())

	_, err := svc.InitiatePayment(context.Background(), &models.InitiatePaymentRequest{
		LeaseID: 1, Name: "Ama K",
	})
	assert.Error(t, err)
}

func TestInitiateGatewayDownLeavesRowPending(t *testing.T) {
	f := newFakeStore()
	seedLease(f, false)
	svc := NewPaymentService(f, f, downGateway{}, testConfig())

	_, err := svc.InitiatePayment(context.Background(), &models.InitiatePaymentRequest{
		LeaseID: 1, Name: "Ama K", Phone: "+237600000001",
	})
	require.ErrorIs(t, err, models.ErrGateway)

	// The local row survives as PENDING for reconciliation
	stale, err := f.GetStalePending(context.Background(), time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, models.PaymentStatusPending, stale[0].Status)
	assert.Empty(t, stale[0].ProviderRef)
}
