package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rent-backend/internal/models"
)

const (
	testRent    = int64(100000)
	testDeposit = int64(200000)
	testFee     = int64(20000)
	testBps     = int64(500) // 5%
)

func TestComputeSplitFirstPaymentNoAgent(t *testing.T) {
	split := ComputeSplit(models.PaymentKindDeposit, testRent, testDeposit, testFee, testBps, testBps, false)

	assert.Equal(t, int64(25000), split.PlatformShare) // 20,000 fee + 5% of rent
	assert.Equal(t, int64(0), split.AgentShare)
	assert.Equal(t, int64(95000), split.OwnerShare)
	assert.Equal(t, int64(200000), split.EscrowCredit)
}

func TestComputeSplitFirstPaymentWithAgent(t *testing.T) {
	split := ComputeSplit(models.PaymentKindDeposit, testRent, testDeposit, testFee, testBps, testBps, true)

	assert.Equal(t, int64(25000), split.PlatformShare)
	assert.Equal(t, int64(5000), split.AgentShare)
	assert.Equal(t, int64(90000), split.OwnerShare)
	assert.Equal(t, int64(200000), split.EscrowCredit)
}

func TestComputeSplitRecurring(t *testing.T) {
	split := ComputeSplit(models.PaymentKindRent, testRent, testDeposit, testFee, testBps, testBps, false)

	assert.Equal(t, int64(5000), split.PlatformShare)
	assert.Equal(t, int64(0), split.AgentShare)
	assert.Equal(t, int64(95000), split.OwnerShare)
	assert.Equal(t, int64(0), split.EscrowCredit)
}

func TestComputeSplitNoAgentCommissionOnRecurring(t *testing.T) {
	// hasAgent only matters on the first payment
	split := ComputeSplit(models.PaymentKindRent, testRent, testDeposit, testFee, testBps, testBps, true)
	assert.Equal(t, int64(0), split.AgentShare)
	assert.Equal(t, int64(95000), split.OwnerShare)
}

func TestComputeSplitRoundsDownToOwner(t *testing.T) {
	// 5% of 99,999 is 4,999.95; commissions floor and the remainder
	// stays with the owner.
	split := ComputeSplit(models.PaymentKindDeposit, 99999, 0, testFee, testBps, testBps, true)

	assert.Equal(t, testFee+4999, split.PlatformShare)
	assert.Equal(t, int64(4999), split.AgentShare)
	assert.Equal(t, int64(90001), split.OwnerShare)

	// Conservation: the rent base is fully distributed
	commission := split.PlatformShare - testFee
	assert.Equal(t, int64(99999), commission+split.AgentShare+split.OwnerShare)
}

func TestAmountDue(t *testing.T) {
	assert.Equal(t, int64(320000), AmountDue(models.PaymentKindDeposit, testRent, testDeposit, testFee))
	assert.Equal(t, testRent, AmountDue(models.PaymentKindRent, testRent, testDeposit, testFee))
}
