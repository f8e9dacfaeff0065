package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rent-backend/internal/models"
)

type LeaseRepository struct {
	DB *pgxpool.Pool
}

func NewLeaseRepository(db *pgxpool.Pool) *LeaseRepository {
	return &LeaseRepository{DB: db}
}

// GetByID retrieves a lease with the owner resolved through the property
func (r *LeaseRepository) GetByID(ctx context.Context, id int) (*models.Lease, error) {
	query := `
		SELECT l.id, l.property_id, p.owner_id, l.tenant_id,
		       l.monthly_rent, l.deposit_amount, l.is_active, l.status,
		       l.created_at, l.updated_at
		FROM leases l
		JOIN properties p ON p.id = l.property_id
		WHERE l.id = $1
	`

	lease := &models.Lease{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&lease.ID, &lease.PropertyID, &lease.OwnerID, &lease.TenantID,
		&lease.MonthlyRent, &lease.DepositAmount, &lease.IsActive, &lease.Status,
		&lease.CreatedAt, &lease.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrLeaseNotFound
	}
	if err != nil {
		return nil, err
	}

	return lease, nil
}
