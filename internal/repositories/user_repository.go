package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rent-backend/internal/models"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, name, email, COALESCE(phone, ''), role,
		       wallet_balance, escrow_balance, is_active,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
		&user.WalletBalance, &user.EscrowBalance, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
