package services

import (
	"context"
	"sync"
	"time"

	"rent-backend/internal/models"
)

// fakeStore is an in-memory ledger implementing PaymentStore, LeaseStore
// and MissionStore with the same transition guards as the SQL layer.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	payments map[string]*models.Payment
	leases   map[int]*models.Lease
	missions map[int]*models.Mission // keyed by property id
	users    map[int]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments: make(map[string]*models.Payment),
		leases:   make(map[int]*models.Lease),
		missions: make(map[int]*models.Mission),
		users:    make(map[int]*models.User),
	}
}

func (f *fakeStore) addUser(id int) {
	f.users[id] = &models.User{ID: id, IsActive: true}
}

func (f *fakeStore) Create(ctx context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	p.ID = f.nextID
	p.Status = models.PaymentStatusPending
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	f.payments[p.Reference] = &cp
	return nil
}

func (f *fakeStore) SetProviderRef(ctx context.Context, reference, providerRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.payments[reference]; ok {
		p.ProviderRef = providerRef
	}
	return nil
}

func (f *fakeStore) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[reference]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) HasSuccessfulPayment(ctx context.Context, leaseID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.payments {
		if p.LeaseID == leaseID && p.Status == models.PaymentStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CommitSettlement(ctx context.Context, s *models.Settlement) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[s.Reference]
	if !ok {
		return models.ErrPaymentNotFound
	}
	switch p.Status {
	case models.PaymentStatusSuccess:
		return models.ErrAlreadySettled
	case models.PaymentStatusFailed:
		return models.ErrPaymentFinal
	}

	now := time.Now()
	p.Status = models.PaymentStatusSuccess
	p.Method = s.Method
	p.PlatformShare = s.Split.PlatformShare
	p.AgentShare = s.Split.AgentShare
	p.OwnerShare = s.Split.OwnerShare
	p.EscrowCredit = s.Split.EscrowCredit
	p.CompletedAt = &now

	owner := f.users[s.OwnerID]
	owner.WalletBalance += s.Split.OwnerShare
	owner.EscrowBalance += s.Split.EscrowCredit

	if s.AgentID != 0 && s.Split.AgentShare > 0 {
		f.users[s.AgentID].WalletBalance += s.Split.AgentShare
	}

	if s.ActivateLease {
		if lease := f.leases[s.LeaseID]; lease != nil && !lease.IsActive {
			lease.IsActive = true
			lease.Status = models.LeaseStatusActive
		}
	}
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, reference, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[reference]
	if !ok {
		return models.ErrPaymentNotFound
	}
	if p.Status == models.PaymentStatusSuccess {
		return models.ErrPaymentFinal
	}
	if p.Status == models.PaymentStatusFailed {
		return nil
	}

	now := time.Now()
	p.Status = models.PaymentStatusFailed
	p.FailureReason = reason
	p.CompletedAt = &now
	return nil
}

func (f *fakeStore) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Payment
	for _, p := range f.payments {
		if p.Status == models.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int) (*models.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lease, ok := f.leases[id]
	if !ok {
		return nil, models.ErrLeaseNotFound
	}
	cp := *lease
	return &cp, nil
}

func (f *fakeStore) GetActiveByProperty(ctx context.Context, propertyID int) (*models.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	mission, ok := f.missions[propertyID]
	if !ok {
		return nil, nil
	}
	if mission.Status != models.MissionStatusAccepted && mission.Status != models.MissionStatusCompleted {
		return nil, nil
	}
	cp := *mission
	return &cp, nil
}

func (f *fakeStore) walletOf(id int) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].WalletBalance
}

func (f *fakeStore) escrowOf(id int) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].EscrowBalance
}
