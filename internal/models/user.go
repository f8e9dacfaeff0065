package models

import "time"

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"` // admin, owner, agent or tenant

	// Balances (smallest currency unit). Only ever incremented by the
	// settlement transaction; withdrawals are handled elsewhere.
	WalletBalance int64 `json:"wallet_balance"`
	EscrowBalance int64 `json:"escrow_balance"` // deposits held for owners

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Property represents a rental unit. The settlement engine only reads it
// to resolve the owner and any agent mission.
type Property struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Title     string    `json:"title"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}
