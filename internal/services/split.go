package services

import "rent-backend/internal/models"

// ComputeSplit divides a confirmed payment between platform, agent and
// owner. All amounts are in the smallest currency unit and rates in
// basis points, so the arithmetic is exact; commission cuts round down
// and the remainder lands on the owner.
//
// Commission is always taken on the monthly rent, never on the deposit:
// the deposit is the tenant's money held in escrow, and the fixed tenant
// fee goes to the platform in full.
func ComputeSplit(kind models.PaymentKind, rent, deposit, tenantFee, platformBps, agentBps int64, hasAgent bool) models.Split {
	platformCut := rent * platformBps / 10000

	if kind == models.PaymentKindDeposit {
		var agentShare int64
		if hasAgent {
			agentShare = rent * agentBps / 10000
		}
		return models.Split{
			PlatformShare: tenantFee + platformCut,
			AgentShare:    agentShare,
			OwnerShare:    rent - platformCut - agentShare,
			EscrowCredit:  deposit,
		}
	}

	// Recurring rent: the agent's placement commission applies to the
	// first payment only.
	return models.Split{
		PlatformShare: platformCut,
		OwnerShare:    rent - platformCut,
	}
}

// AmountDue is what the tenant is charged for a payment of the given
// kind: first payments bundle rent, deposit and the fixed fee.
func AmountDue(kind models.PaymentKind, rent, deposit, tenantFee int64) int64 {
	if kind == models.PaymentKindDeposit {
		return rent + deposit + tenantFee
	}
	return rent
}
