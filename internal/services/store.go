package services

import (
	"context"
	"time"

	"rent-backend/internal/models"
)

// PaymentStore is the slice of the ledger store the payment pipeline
// needs. *repositories.PaymentRepository satisfies it; tests use an
// in-memory fake.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	SetProviderRef(ctx context.Context, reference, providerRef string) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	HasSuccessfulPayment(ctx context.Context, leaseID int) (bool, error)
	CommitSettlement(ctx context.Context, s *models.Settlement) error
	MarkFailed(ctx context.Context, reference, reason string) error
	GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Payment, error)
}

type LeaseStore interface {
	GetByID(ctx context.Context, id int) (*models.Lease, error)
}

type MissionStore interface {
	GetActiveByProperty(ctx context.Context, propertyID int) (*models.Mission, error)
}
