package models

import "time"

// LeaseStatus represents the lifecycle state of a lease
type LeaseStatus string

const (
	LeaseStatusPendingSignature LeaseStatus = "PENDING_SIGNATURE"
	LeaseStatusActive           LeaseStatus = "ACTIVE"
	LeaseStatusTerminated       LeaseStatus = "TERMINATED"
)

// Lease represents a tenancy agreement. Created when a landlord registers
// a tenant; activated by the settlement engine on the first successful
// payment; never deleted here.
type Lease struct {
	ID            int         `json:"id"`
	PropertyID    int         `json:"property_id"`
	OwnerID       int         `json:"owner_id"` // joined from properties
	TenantID      int         `json:"tenant_id"`
	MonthlyRent   int64       `json:"monthly_rent"`   // smallest currency unit
	DepositAmount int64       `json:"deposit_amount"` // smallest currency unit
	IsActive      bool        `json:"is_active"`
	Status        LeaseStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
