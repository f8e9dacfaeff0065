package models

import "errors"

// Sentinel errors shared by services and repositories. Handlers map these
// to HTTP status codes; everything else is treated as a 500.
var (
	ErrLeaseNotFound   = errors.New("lease not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrGateway wraps any non-success response or transport failure from
	// the payment processor during initiation.
	ErrGateway = errors.New("payment gateway error")

	// ErrAlreadySettled is returned when settlement is requested for a
	// payment that is already SUCCESS. It is a no-op, not a failure.
	ErrAlreadySettled = errors.New("payment already settled")

	// ErrPaymentFinal is returned when a state transition is requested out
	// of a terminal state (e.g. a success notification for a FAILED payment).
	ErrPaymentFinal = errors.New("payment is in a terminal state")

	// ErrVerificationInconclusive means the server-to-server status check
	// could not be completed. No ledger effect is applied; the gateway's
	// webhook redelivery is relied upon.
	ErrVerificationInconclusive = errors.New("transaction verification inconclusive")
)
