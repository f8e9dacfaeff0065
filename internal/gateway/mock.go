package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory gateway for local development and tests.
// Created sessions report ACCEPTED once marked paid via Pay.
type MockClient struct {
	mu       sync.Mutex
	sessions map[string]*TransactionStatus
}

func NewMockClient() *MockClient {
	return &MockClient{sessions: make(map[string]*TransactionStatus)}
}

func (m *MockClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[req.Reference] = &TransactionStatus{Status: "PENDING"}
	return &CreatePaymentResponse{
		PaymentURL:  fmt.Sprintf("https://checkout.invalid/pay/%s", req.Reference),
		ProviderRef: "mock_" + req.Reference,
	}, nil
}

func (m *MockClient) CheckTransaction(ctx context.Context, q StatusQuery) (*TransactionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[q.Reference]
	if !ok {
		return &TransactionStatus{Status: "UNKNOWN", Terminal: true}, nil
	}
	copy := *s
	return &copy, nil
}

// Pay marks a session as accepted (test hook).
func (m *MockClient) Pay(reference, method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[reference] = &TransactionStatus{Accepted: true, Terminal: true, Status: "ACCEPTED", Method: method}
}

// Refuse marks a session as refused (test hook).
func (m *MockClient) Refuse(reference string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[reference] = &TransactionStatus{Terminal: true, Status: "REFUSED"}
}
