package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rent-backend/internal/models"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentColumns = `
	id, lease_id, reference, COALESCE(provider_ref, ''), kind,
	amount, platform_share, agent_share, owner_share, escrow_credit,
	status, COALESCE(method, ''), COALESCE(failure_reason, ''),
	payer_name, COALESCE(payer_email, ''), payer_phone,
	created_at, completed_at
`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.LeaseID, &p.Reference, &p.ProviderRef, &p.Kind,
		&p.Amount, &p.PlatformShare, &p.AgentShare, &p.OwnerShare, &p.EscrowCredit,
		&p.Status, &p.Method, &p.FailureReason,
		&p.PayerName, &p.PayerEmail, &p.PayerPhone,
		&p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new PENDING payment row with zeroed split fields
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (lease_id, reference, kind, amount, status, payer_name, payer_email, payer_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query,
		p.LeaseID,
		p.Reference,
		p.Kind,
		p.Amount,
		models.PaymentStatusPending,
		p.PayerName,
		p.PayerEmail,
		p.PayerPhone,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.Status = models.PaymentStatusPending
	return nil
}

// SetProviderRef records the gateway-side id once the checkout session exists
func (r *PaymentRepository) SetProviderRef(ctx context.Context, reference, providerRef string) error {
	_, err := r.DB.Exec(ctx,
		"UPDATE payments SET provider_ref = $2 WHERE reference = $1",
		reference, providerRef,
	)
	return err
}

// GetByReference retrieves a payment by its unique transaction reference
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE reference = $1", paymentColumns)

	p, err := scanPayment(r.DB.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// HasSuccessfulPayment reports whether any payment on the lease has
// already settled. Backed by idx_payments_lease_status.
func (r *PaymentRepository) HasSuccessfulPayment(ctx context.Context, leaseID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM payments WHERE lease_id = $1 AND status = $2)",
		leaseID, models.PaymentStatusSuccess,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CommitSettlement applies every ledger effect of one confirmed payment
// inside a single transaction: the payment flips PENDING->SUCCESS with
// its split, the owner is credited (wallet and, for deposits, escrow),
// the agent is credited when one applies, and the lease is activated on
// its first settled payment. The conditional status update is the
// idempotency guard: with two concurrent callers only one sees an
// affected row; the other gets ErrAlreadySettled and no effects.
func (r *PaymentRepository) CommitSettlement(ctx context.Context, s *models.Settlement) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $2,
		    method = $3,
		    platform_share = $4,
		    agent_share = $5,
		    owner_share = $6,
		    escrow_credit = $7,
		    completed_at = $8
		WHERE reference = $1 AND status = $9
	`,
		s.Reference, models.PaymentStatusSuccess, s.Method,
		s.Split.PlatformShare, s.Split.AgentShare, s.Split.OwnerShare, s.Split.EscrowCredit,
		time.Now(), models.PaymentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", s.Reference, err)
	}

	if tag.RowsAffected() == 0 {
		var status models.PaymentStatus
		err := tx.QueryRow(ctx, "SELECT status FROM payments WHERE reference = $1", s.Reference).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if status == models.PaymentStatusSuccess {
			return models.ErrAlreadySettled
		}
		return models.ErrPaymentFinal
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance + $2,
		    escrow_balance = escrow_balance + $3,
		    updated_at = NOW()
		WHERE id = $1
	`, s.OwnerID, s.Split.OwnerShare, s.Split.EscrowCredit)
	if err != nil {
		return fmt.Errorf("failed to credit owner %d: %w", s.OwnerID, err)
	}

	if s.AgentID != 0 && s.Split.AgentShare > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE users
			SET wallet_balance = wallet_balance + $2,
			    updated_at = NOW()
			WHERE id = $1
		`, s.AgentID, s.Split.AgentShare)
		if err != nil {
			return fmt.Errorf("failed to credit agent %d: %w", s.AgentID, err)
		}
	}

	if s.ActivateLease {
		_, err = tx.Exec(ctx, `
			UPDATE leases
			SET is_active = TRUE,
			    status = $2,
			    updated_at = NOW()
			WHERE id = $1 AND is_active = FALSE
		`, s.LeaseID, models.LeaseStatusActive)
		if err != nil {
			return fmt.Errorf("failed to activate lease %d: %w", s.LeaseID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settlement for %s: %w", s.Reference, err)
	}
	return nil
}

// MarkFailed moves a PENDING payment to FAILED with no other ledger
// effect. Safe to call repeatedly; a payment that already settled is
// never overwritten.
func (r *PaymentRepository) MarkFailed(ctx context.Context, reference, reason string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE payments
		SET status = $2, failure_reason = $3, completed_at = $4
		WHERE reference = $1 AND status = $5
	`, reference, models.PaymentStatusFailed, reason, time.Now(), models.PaymentStatusPending)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var status models.PaymentStatus
		err := r.DB.QueryRow(ctx, "SELECT status FROM payments WHERE reference = $1", reference).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if status == models.PaymentStatusSuccess {
			return models.ErrPaymentFinal
		}
		// already FAILED: redundant but harmless
	}
	return nil
}

// GetAll returns payments with optional filters (admin listing)
func (r *PaymentRepository) GetAll(ctx context.Context, filter *models.PaymentFilter) ([]*models.Payment, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if filter.LeaseID > 0 {
		whereClause += fmt.Sprintf(" AND lease_id = $%d", argNum)
		args = append(args, filter.LeaseID)
		argNum++
	}

	if filter.Status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}

	if filter.Kind != "" {
		whereClause += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filter.Kind)
		argNum++
	}

	if filter.StartDate != nil {
		whereClause += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}

	if filter.EndDate != nil {
		whereClause += fmt.Sprintf(" AND created_at <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payments %s", whereClause)
	var total int
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, paymentColumns, whereClause, argNum, argNum+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}

	return payments, total, nil
}

// GetSummary returns settlement statistics for admin reports
func (r *PaymentRepository) GetSummary(ctx context.Context, startDate, endDate *time.Time) (*models.PaymentSummary, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if startDate != nil {
		whereClause += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *startDate)
		argNum++
	}

	if endDate != nil {
		whereClause += fmt.Sprintf(" AND created_at <= $%d", argNum)
		args = append(args, *endDate)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) as total_payments,
			COUNT(*) FILTER (WHERE status = 'SUCCESS') as successful_payments,
			COUNT(*) FILTER (WHERE status = 'FAILED') as failed_payments,
			COUNT(*) FILTER (WHERE status = 'PENDING') as pending_payments,
			COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESS'), 0) as total_collected,
			COALESCE(SUM(platform_share) FILTER (WHERE status = 'SUCCESS'), 0) as total_platform,
			COALESCE(SUM(agent_share) FILTER (WHERE status = 'SUCCESS'), 0) as total_agent,
			COALESCE(SUM(owner_share) FILTER (WHERE status = 'SUCCESS'), 0) as total_owner,
			COALESCE(SUM(escrow_credit) FILTER (WHERE status = 'SUCCESS'), 0) as total_escrow
		FROM payments
		%s
	`, whereClause)

	summary := &models.PaymentSummary{}
	err := r.DB.QueryRow(ctx, query, args...).Scan(
		&summary.TotalPayments,
		&summary.SuccessfulPayments,
		&summary.FailedPayments,
		&summary.PendingPayments,
		&summary.TotalCollected,
		&summary.TotalPlatform,
		&summary.TotalAgent,
		&summary.TotalOwner,
		&summary.TotalEscrow,
	)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// GetStalePending returns PENDING payments older than the cutoff, for
// the reconciliation pass over sessions whose webhook never arrived.
func (r *PaymentRepository) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Payment, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`, paymentColumns)

	rows, err := r.DB.Query(ctx, query, models.PaymentStatusPending, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, nil
}

// GetRecentSettled returns the latest settled payments (ops dashboard)
func (r *PaymentRepository) GetRecentSettled(ctx context.Context, limit int) ([]*models.Payment, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE status = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`, paymentColumns)

	rows, err := r.DB.Query(ctx, query, models.PaymentStatusSuccess, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, nil
}
