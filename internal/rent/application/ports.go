package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	rent "rentnotice-cloud/internal/rent/domain"
)

var (
	// ErrLoadFailed wraps collaborator failures while reading tenant, payment or settings data.
	ErrLoadFailed = errors.New("rent app: failed to load")
	// ErrStoreFailed wraps collaborator failures while writing.
	ErrStoreFailed = errors.New("rent app: failed to store")
)

// TenantStore persists tenants per owner.
// GetTenant returns nil, nil when the tenant does not exist for the owner.
type TenantStore interface {
	GetTenant(ctx context.Context, ownerID, tenantID string) (*rent.Tenant, error)
	ListTenants(ctx context.Context, ownerID string) ([]rent.Tenant, error)
	CreateTenant(ctx context.Context, tenant rent.Tenant) error
}

// PaymentStore persists append-only payments.
type PaymentStore interface {
	ListPayments(ctx context.Context, ownerID, tenantID string) ([]rent.Payment, error)
	RecordPayment(ctx context.Context, payment rent.Payment) error
}

// SettingsStore persists owner settings. A missing record yields the zero value.
type SettingsStore interface {
	GetSettings(ctx context.Context, ownerID string) (rent.OwnerSettings, error)
	SaveSettings(ctx context.Context, ownerID string, settings rent.OwnerSettings) error
}

// Clock supplies the as-of instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// LoadTenant reads a tenant and maps absence to rent.ErrTenantNotFound.
func LoadTenant(ctx context.Context, store TenantStore, ownerID, tenantID string) (rent.Tenant, error) {
	if ownerID == "" {
		return rent.Tenant{}, rent.ErrEmptyOwnerID
	}
	if tenantID == "" {
		return rent.Tenant{}, rent.ErrEmptyTenantID
	}
	tenant, err := store.GetTenant(ctx, ownerID, tenantID)
	if err != nil {
		return rent.Tenant{}, loadErr("tenant", err)
	}
	if tenant == nil {
		return rent.Tenant{}, rent.ErrTenantNotFound
	}
	return *tenant, nil
}

func loadErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, what, err)
}

func storeErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailed, what, err)
}
