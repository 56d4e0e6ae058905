package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rent "rentnotice-cloud/internal/rent/domain"
	"rentnotice-cloud/internal/rent/infrastructure/memory"
)

var testNow = time.Date(2024, time.March, 12, 9, 30, 0, 0, time.UTC)

func TestTenantService_CreateAppliesOwnerDefaults(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	due := 5
	fee := decimal.NewFromInt(75)
	require.NoError(t, store.SaveSettings(ctx, "o-1", rent.OwnerSettings{DefaultDueDay: &due, DefaultLateFeeFlat: &fee}))

	svc, err := NewTenantService(store, store, store, FixedClock(testNow))
	require.NoError(t, err)

	created, err := svc.Create(ctx, "o-1", []byte(`{"name":"Jane Doe","unit":"4B","rent":1200}`))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "o-1", created.OwnerID)
	assert.Equal(t, 5, created.DueDay)
	assert.True(t, created.LateFeeFlat.Equal(fee))
	assert.Equal(t, testNow, created.CreatedAt)

	explicit, err := svc.Create(ctx, "o-1", []byte(`{"name":"Ann","rent":900,"due_day":1,"late_fee_flat":0}`))
	require.NoError(t, err)
	assert.Equal(t, 1, explicit.DueDay)
	assert.True(t, explicit.LateFeeFlat.IsZero())

	got, err := svc.Get(ctx, "o-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
}

func TestTenantService_CreateRejectsBadRecord(t *testing.T) {
	store := memory.NewStore()
	svc, err := NewTenantService(store, store, store, FixedClock(testNow))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "o-1", []byte(`{"unit":"4B"}`))
	var decodeErr *rent.DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	_, err = svc.Create(context.Background(), "", []byte(`{"name":"A","rent":1}`))
	assert.ErrorIs(t, err, rent.ErrEmptyOwnerID)

	list, err := svc.List(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTenantService_ListFlagsLateTenants(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateTenant(ctx, rent.Tenant{ID: "a", OwnerID: "o-1", Name: "Alpha", Rent: decimal.NewFromInt(1000), DueDay: 1}))
	require.NoError(t, store.CreateTenant(ctx, rent.Tenant{ID: "b", OwnerID: "o-1", Name: "Beta", Rent: decimal.NewFromInt(800), DueDay: 15}))
	require.NoError(t, store.CreateTenant(ctx, rent.Tenant{ID: "c", OwnerID: "o-2", Name: "Other", Rent: decimal.NewFromInt(1), DueDay: 1}))
	require.NoError(t, store.RecordPayment(ctx, rent.Payment{ID: "p1", TenantID: "a", OwnerID: "o-1", Period: "2024-03", Amount: decimal.NewFromInt(400)}))

	svc, err := NewTenantService(store, store, store, FixedClock(testNow))
	require.NoError(t, err)
	list, err := svc.List(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Alpha", list[0].Name)
	assert.True(t, list[0].Late)
	assert.Equal(t, rent.PeriodKey("2024-03"), list[0].Period)
	assert.Equal(t, rent.StatusPartial, list[0].CurrentStatus)
	assert.True(t, list[0].Outstanding.Equal(decimal.NewFromInt(600)))

	assert.Equal(t, "Beta", list[1].Name)
	assert.False(t, list[1].Late)
	assert.Equal(t, rent.StatusUnpaid, list[1].CurrentStatus)
}

func TestLedgerService_Ledger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateTenant(ctx, rent.Tenant{ID: "a", OwnerID: "o-1", Name: "Alpha", Rent: decimal.NewFromInt(1000), DueDay: 1}))
	require.NoError(t, store.RecordPayment(ctx, rent.Payment{ID: "p1", TenantID: "a", OwnerID: "o-1", Period: "2024-02", Amount: decimal.NewFromInt(1000)}))
	require.NoError(t, store.RecordPayment(ctx, rent.Payment{ID: "p2", TenantID: "a", OwnerID: "o-1", Period: "2023-01", Amount: decimal.NewFromInt(1000)}))

	svc, err := NewLedgerService(store, store, FixedClock(testNow))
	require.NoError(t, err)
	view, err := svc.Ledger(ctx, "o-1", "a")
	require.NoError(t, err)
	require.Len(t, view.Rows, rent.LedgerPeriods)
	assert.Equal(t, rent.PeriodKey("2024-03"), view.Rows[0].Period)
	assert.Equal(t, rent.StatusUnpaid, view.Rows[0].Status)
	assert.Equal(t, rent.StatusPaid, view.Rows[1].Status)
	assert.Equal(t, rent.PeriodKey("2023-04"), view.Rows[11].Period)
	assert.True(t, view.Summary.Paid.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, testNow, view.AsOf)

	_, err = svc.Ledger(ctx, "o-2", "a")
	assert.ErrorIs(t, err, rent.ErrTenantNotFound)
}

func TestLedgerService_WrapsStoreFailures(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.CreateTenant(context.Background(), rent.Tenant{ID: "a", OwnerID: "o-1", Name: "Alpha", Rent: decimal.NewFromInt(1)}))
	svc, err := NewLedgerService(store, brokenPayments{}, FixedClock(testNow))
	require.NoError(t, err)

	_, err = svc.Ledger(context.Background(), "o-1", "a")
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPaymentService_Record(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateTenant(ctx, rent.Tenant{ID: "a", OwnerID: "o-1", Name: "Alpha", Rent: decimal.NewFromInt(1000)}))
	svc, err := NewPaymentService(store, store, FixedClock(testNow))
	require.NoError(t, err)

	p, err := svc.Record(ctx, "o-1", "a", []byte(`{"period":"2024-03","amount":"250.25"}`))
	require.NoError(t, err)
	assert.Equal(t, rent.PeriodKey("2024-03"), p.Period)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("250.25")))
	assert.NotEmpty(t, p.ID)

	_, err = svc.Record(ctx, "o-1", "missing", []byte(`{"period":"2024-03","amount":1}`))
	assert.ErrorIs(t, err, rent.ErrTenantNotFound)

	_, err = svc.Record(ctx, "o-1", "a", []byte(`{"period":"2024-13","amount":1}`))
	var decodeErr *rent.DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	_, err = svc.Record(ctx, "o-1", "a", []byte(`{"period":"2024-03","amount":"99.995"}`))
	assert.ErrorAs(t, err, &decodeErr)

	stored, err := store.ListPayments(ctx, "o-1", "a")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	failing, err := NewPaymentService(store, brokenPayments{}, FixedClock(testNow))
	require.NoError(t, err)
	_, err = failing.Record(ctx, "o-1", "a", []byte(`{"period":"2024-03","amount":1}`))
	assert.ErrorIs(t, err, ErrStoreFailed)
}

func TestSettingsService_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, err := NewSettingsService(store)
	require.NoError(t, err)

	empty, err := svc.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, rent.OwnerSettings{}, empty)

	saved, err := svc.Save(ctx, "o-1", []byte(`{"business_name":"Acme","contact_info":"555-0100","default_due_day":3}`))
	require.NoError(t, err)
	assert.Equal(t, "Acme", saved.BusinessName)

	got, err := svc.Get(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, got.DefaultDueDay)
	assert.Equal(t, 3, *got.DefaultDueDay)

	_, err = svc.Save(ctx, "o-1", []byte(`{"default_due_day":0,"bogus":true}`))
	var decodeErr *rent.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestLoadTenant_Guards(t *testing.T) {
	store := memory.NewStore()
	_, err := LoadTenant(context.Background(), store, "", "a")
	assert.ErrorIs(t, err, rent.ErrEmptyOwnerID)
	_, err = LoadTenant(context.Background(), store, "o-1", "")
	assert.ErrorIs(t, err, rent.ErrEmptyTenantID)
}

type brokenPayments struct{}

func (brokenPayments) ListPayments(context.Context, string, string) ([]rent.Payment, error) {
	return nil, errors.New("disk full")
}

func (brokenPayments) RecordPayment(context.Context, rent.Payment) error {
	return errors.New("disk full")
}
