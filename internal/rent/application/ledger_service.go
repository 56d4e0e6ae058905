package application

import (
	"context"
	"errors"
	"time"

	"rentnotice-cloud/internal/observability/metrics"
	rent "rentnotice-cloud/internal/rent/domain"
)

// LedgerView is a tenant's twelve-month ledger as of one instant.
type LedgerView struct {
	Tenant  rent.Tenant        `json:"tenant"`
	AsOf    time.Time          `json:"as_of"`
	Rows    []rent.LedgerRow   `json:"rows"`
	Summary rent.LedgerSummary `json:"summary"`
}

// LedgerService builds tenant ledgers from stored payments.
type LedgerService struct {
	tenants  TenantStore
	payments PaymentStore
	clock    Clock
}

// NewLedgerService constructs a service.
func NewLedgerService(tenants TenantStore, payments PaymentStore, clock Clock) (*LedgerService, error) {
	if tenants == nil {
		return nil, errors.New("ledger service: nil tenant store")
	}
	if payments == nil {
		return nil, errors.New("ledger service: nil payment store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &LedgerService{tenants: tenants, payments: payments, clock: clock}, nil
}

// Ledger returns the ledger of one tenant as of the service clock.
func (s *LedgerService) Ledger(ctx context.Context, ownerID, tenantID string) (*LedgerView, error) {
	return s.LedgerAsOf(ctx, ownerID, tenantID, s.clock.Now())
}

// LedgerAsOf returns the ledger of one tenant as of asOf.
func (s *LedgerService) LedgerAsOf(ctx context.Context, ownerID, tenantID string, asOf time.Time) (*LedgerView, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveLedgerBuild(result, time.Since(start))
	}()

	tenant, err := LoadTenant(ctx, s.tenants, ownerID, tenantID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	payments, err := s.payments.ListPayments(ctx, ownerID, tenantID)
	if err != nil {
		result = metrics.ResultError
		return nil, loadErr("payments", err)
	}
	rows := rent.BuildLedger(tenant, payments, asOf)
	return &LedgerView{
		Tenant:  tenant,
		AsOf:    asOf,
		Rows:    rows,
		Summary: rent.Summarize(rows),
	}, nil
}
