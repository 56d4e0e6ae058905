package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rent "rentnotice-cloud/internal/rent/domain"
)

// TenantOverview is a tenant with its standing for the current period.
type TenantOverview struct {
	rent.Tenant
	Late          bool            `json:"late"`
	Period        rent.PeriodKey  `json:"period"`
	CurrentStatus rent.Status     `json:"current_status"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// TenantService creates and lists tenants.
type TenantService struct {
	tenants  TenantStore
	payments PaymentStore
	settings SettingsStore
	clock    Clock
}

// NewTenantService constructs a service.
func NewTenantService(tenants TenantStore, payments PaymentStore, settings SettingsStore, clock Clock) (*TenantService, error) {
	if tenants == nil {
		return nil, errors.New("tenant service: nil tenant store")
	}
	if payments == nil {
		return nil, errors.New("tenant service: nil payment store")
	}
	if settings == nil {
		return nil, errors.New("tenant service: nil settings store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TenantService{tenants: tenants, payments: payments, settings: settings, clock: clock}, nil
}

// Create decodes a tenant record, fills omitted due day and late fee from the
// owner defaults and stores the tenant.
func (s *TenantService) Create(ctx context.Context, ownerID string, record []byte) (*rent.Tenant, error) {
	if ownerID == "" {
		return nil, rent.ErrEmptyOwnerID
	}
	tenant, dueDaySet, lateFeeSet, err := rent.DecodeTenant(record)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx, ownerID)
	if err != nil {
		return nil, loadErr("settings", err)
	}
	tenant = settings.ApplyDefaults(tenant, dueDaySet, lateFeeSet)
	tenant.ID = uuid.NewString()
	tenant.OwnerID = ownerID
	tenant.CreatedAt = s.clock.Now().UTC()

	if err := s.tenants.CreateTenant(ctx, tenant); err != nil {
		return nil, storeErr("tenant", err)
	}
	return &tenant, nil
}

// Get returns one tenant.
func (s *TenantService) Get(ctx context.Context, ownerID, tenantID string) (*rent.Tenant, error) {
	tenant, err := LoadTenant(ctx, s.tenants, ownerID, tenantID)
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List returns the owner's tenants with their late flag and current-period status.
func (s *TenantService) List(ctx context.Context, ownerID string) ([]TenantOverview, error) {
	if ownerID == "" {
		return nil, rent.ErrEmptyOwnerID
	}
	tenants, err := s.tenants.ListTenants(ctx, ownerID)
	if err != nil {
		return nil, loadErr("tenants", err)
	}
	asOf := s.clock.Now()
	out := make([]TenantOverview, 0, len(tenants))
	for _, tenant := range tenants {
		payments, err := s.payments.ListPayments(ctx, ownerID, tenant.ID)
		if err != nil {
			return nil, loadErr("payments", err)
		}
		out = append(out, overview(tenant, payments, asOf))
	}
	return out, nil
}

func overview(tenant rent.Tenant, payments []rent.Payment, asOf time.Time) TenantOverview {
	rows := rent.BuildLedger(tenant, payments, asOf)
	current := rows[0]
	outstanding := current.Expected.Sub(current.Paid)
	if current.Status == rent.StatusNotApplicable || outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return TenantOverview{
		Tenant:        tenant,
		Late:          tenant.IsLate(asOf),
		Period:        current.Period,
		CurrentStatus: current.Status,
		Outstanding:   outstanding,
	}
}
