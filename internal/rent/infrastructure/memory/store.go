package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	rent "rentnotice-cloud/internal/rent/domain"
)

// Store is an in-memory tenant, payment and settings store.
type Store struct {
	mu       sync.RWMutex
	tenants  map[string]rent.Tenant
	payments []rent.Payment
	settings map[string]rent.OwnerSettings
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		tenants:  make(map[string]rent.Tenant),
		settings: make(map[string]rent.OwnerSettings),
	}
}

// GetTenant loads a tenant scoped to its owner.
func (s *Store) GetTenant(ctx context.Context, ownerID, tenantID string) (*rent.Tenant, error) {
	_ = ctx
	s.mu.RLock()
	tenant, ok := s.tenants[tenantID]
	s.mu.RUnlock()
	if !ok || tenant.OwnerID != ownerID {
		return nil, nil
	}
	return &tenant, nil
}

// ListTenants returns the owner's tenants ordered by name.
func (s *Store) ListTenants(ctx context.Context, ownerID string) ([]rent.Tenant, error) {
	_ = ctx
	s.mu.RLock()
	var out []rent.Tenant
	for _, tenant := range s.tenants {
		if tenant.OwnerID == ownerID {
			out = append(out, tenant)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateTenant stores a new tenant.
func (s *Store) CreateTenant(ctx context.Context, tenant rent.Tenant) error {
	_ = ctx
	if tenant.ID == "" {
		return rent.ErrEmptyTenantID
	}
	if tenant.OwnerID == "" {
		return rent.ErrEmptyOwnerID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenants[tenant.ID]; exists {
		return errors.New("memory store: duplicate tenant id")
	}
	s.tenants[tenant.ID] = tenant
	return nil
}

// ListPayments returns a tenant's payments in insertion order.
func (s *Store) ListPayments(ctx context.Context, ownerID, tenantID string) ([]rent.Payment, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rent.Payment
	for _, p := range s.payments {
		if p.OwnerID == ownerID && p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecordPayment appends a payment.
func (s *Store) RecordPayment(ctx context.Context, payment rent.Payment) error {
	_ = ctx
	if payment.TenantID == "" {
		return rent.ErrEmptyTenantID
	}
	if !payment.Period.Valid() {
		return rent.ErrInvalidPeriod
	}
	s.mu.Lock()
	s.payments = append(s.payments, payment)
	s.mu.Unlock()
	return nil
}

// GetSettings returns the owner's settings or the zero value.
func (s *Store) GetSettings(ctx context.Context, ownerID string) (rent.OwnerSettings, error) {
	_ = ctx
	s.mu.RLock()
	settings := s.settings[ownerID]
	s.mu.RUnlock()
	return settings, nil
}

// SaveSettings replaces the owner's settings.
func (s *Store) SaveSettings(ctx context.Context, ownerID string, settings rent.OwnerSettings) error {
	_ = ctx
	if ownerID == "" {
		return rent.ErrEmptyOwnerID
	}
	s.mu.Lock()
	s.settings[ownerID] = settings
	s.mu.Unlock()
	return nil
}
