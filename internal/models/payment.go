package models

import "time"

// PaymentStatus represents the state of a rent payment transaction
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// PaymentKind distinguishes the first (signature/deposit) payment on a
// lease from recurring rent payments
type PaymentKind string

const (
	PaymentKindDeposit PaymentKind = "DEPOSIT"
	PaymentKindRent    PaymentKind = "RENT"
)

// Payment represents one attempted rent transaction. Created PENDING by
// the initiator, moved exactly once to SUCCESS or FAILED by the webhook
// path. Terminal states never re-transition.
type Payment struct {
	ID        int         `json:"id"`
	LeaseID   int         `json:"lease_id"`
	Reference string      `json:"reference"` // unique, used as gateway transaction id
	Kind      PaymentKind `json:"kind"`

	// Amounts (smallest currency unit)
	Amount        int64 `json:"amount"` // total charged to the tenant
	PlatformShare int64 `json:"platform_share"`
	AgentShare    int64 `json:"agent_share"`
	OwnerShare    int64 `json:"owner_share"`
	EscrowCredit  int64 `json:"escrow_credit"`

	Status        PaymentStatus `json:"status"`
	Method        string        `json:"method,omitempty"` // reported by the gateway: MOBILE_MONEY, CARD, ...
	FailureReason string        `json:"failure_reason,omitempty"`

	// ProviderRef is the gateway-side identifier for this transaction
	// (order id / payment link id depending on provider).
	ProviderRef string `json:"provider_ref,omitempty"`

	// Payer contact captured at initiation
	PayerName  string `json:"payer_name"`
	PayerEmail string `json:"payer_email,omitempty"`
	PayerPhone string `json:"payer_phone"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Split is the division of a payment's rent base into platform
// commission, agent commission and owner proceeds, plus the escrow
// credit tracked alongside it.
type Split struct {
	PlatformShare int64 `json:"platform_share"`
	AgentShare    int64 `json:"agent_share"`
	OwnerShare    int64 `json:"owner_share"`
	EscrowCredit  int64 `json:"escrow_credit"`
}

// Settlement describes the full set of ledger effects to commit
// atomically for one confirmed payment.
type Settlement struct {
	Reference     string
	Method        string
	Split         Split
	LeaseID       int
	OwnerID       int
	AgentID       int // 0 when no agent commission applies
	ActivateLease bool
}

// SettlementOutcome is returned by the settlement engine.
type SettlementOutcome struct {
	Reference      string `json:"reference"`
	Split          Split  `json:"split"`
	LeaseActivated bool   `json:"lease_activated"`
	AlreadySettled bool   `json:"already_settled"`
}

// InitiatePaymentRequest is the body of POST /payments/rent
type InitiatePaymentRequest struct {
	LeaseID int    `json:"lease_id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Name    string `json:"name"`
}

// InitiatePaymentResponse is returned to the caller, which redirects the
// payer to PaymentURL.
type InitiatePaymentResponse struct {
	PaymentURL string `json:"payment_url"`
	PaymentID  int    `json:"payment_id"`
	Reference  string `json:"reference"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// PaymentFilter is used for the admin listing endpoint
type PaymentFilter struct {
	LeaseID   int           `json:"lease_id,omitempty"`
	Status    PaymentStatus `json:"status,omitempty"`
	Kind      PaymentKind   `json:"kind,omitempty"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}

// PaymentSummary is for admin reports
type PaymentSummary struct {
	TotalPayments      int   `json:"total_payments"`
	SuccessfulPayments int   `json:"successful_payments"`
	FailedPayments     int   `json:"failed_payments"`
	PendingPayments    int   `json:"pending_payments"`
	TotalCollected     int64 `json:"total_collected"`  // sum of settled amounts
	TotalPlatform      int64 `json:"total_platform"`   // commissions + fixed fees
	TotalAgent         int64 `json:"total_agent"`
	TotalOwner         int64 `json:"total_owner"`
	TotalEscrow        int64 `json:"total_escrow"`
}
