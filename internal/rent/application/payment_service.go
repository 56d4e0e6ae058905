package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"rentnotice-cloud/internal/observability/metrics"
	rent "rentnotice-cloud/internal/rent/domain"
)

// PaymentService records rent payments.
type PaymentService struct {
	tenants  TenantStore
	payments PaymentStore
	clock    Clock
}

// NewPaymentService constructs a service.
func NewPaymentService(tenants TenantStore, payments PaymentStore, clock Clock) (*PaymentService, error) {
	if tenants == nil {
		return nil, errors.New("payment service: nil tenant store")
	}
	if payments == nil {
		return nil, errors.New("payment service: nil payment store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PaymentService{tenants: tenants, payments: payments, clock: clock}, nil
}

// Record decodes a payment record and appends it to the tenant's history.
func (s *PaymentService) Record(ctx context.Context, ownerID, tenantID string, record []byte) (_ *rent.Payment, err error) {
	defer func() {
		if err != nil {
			metrics.IncPaymentRecorded(metrics.ResultError)
			return
		}
		metrics.IncPaymentRecorded(metrics.ResultSuccess)
	}()

	period, amount, err := rent.DecodePayment(record)
	if err != nil {
		return nil, err
	}
	if _, err := LoadTenant(ctx, s.tenants, ownerID, tenantID); err != nil {
		return nil, err
	}
	payment := rent.Payment{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		OwnerID:   ownerID,
		Period:    period,
		Amount:    amount,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.payments.RecordPayment(ctx, payment); err != nil {
		return nil, storeErr("payment", err)
	}
	return &payment, nil
}
