package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rent "rentnotice-cloud/internal/rent/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_TenantRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	created := time.Date(2024, time.February, 3, 4, 5, 6, 0, time.UTC)
	tenant := rent.Tenant{
		ID:          "t-1",
		OwnerID:     "o-1",
		Name:        "Jane Doe",
		Unit:        "4B",
		Email:       "jane@example.com",
		Rent:        decimal.RequireFromString("1200.50"),
		DueDay:      5,
		LateFeeFlat: decimal.RequireFromString("25"),
		CreatedAt:   created,
	}
	require.NoError(t, store.CreateTenant(ctx, tenant))

	got, err := store.GetTenant(ctx, "o-1", "t-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Rent.Equal(tenant.Rent))
	assert.True(t, got.LateFeeFlat.Equal(tenant.LateFeeFlat))
	assert.Equal(t, 5, got.DueDay)
	assert.True(t, got.CreatedAt.Equal(created))

	missing, err := store.GetTenant(ctx, "o-2", "t-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.ListTenants(ctx, "o-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_PaymentsFeedLedger(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	asOf := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	tenant := rent.Tenant{ID: "t-1", OwnerID: "o-1", Name: "Jane", Rent: decimal.NewFromInt(1000), DueDay: 1, CreatedAt: asOf}
	require.NoError(t, store.CreateTenant(ctx, tenant))
	for i, amount := range []string{"400", "600", "250"} {
		period := rent.PeriodKey("2024-03")
		if i == 2 {
			period = "2024-02"
		}
		require.NoError(t, store.RecordPayment(ctx, rent.Payment{
			ID: "p-" + amount, TenantID: "t-1", OwnerID: "o-1", Period: period,
			Amount: decimal.RequireFromString(amount), CreatedAt: asOf.Add(time.Duration(i) * time.Minute),
		}))
	}

	payments, err := store.ListPayments(ctx, "o-1", "t-1")
	require.NoError(t, err)
	require.Len(t, payments, 3)

	rows := rent.BuildLedger(tenant, payments, asOf)
	assert.Equal(t, rent.StatusPaid, rows[0].Status)
	assert.Equal(t, rent.StatusPartial, rows[1].Status)
}

func TestStore_Settings(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	empty, err := store.GetSettings(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, rent.OwnerSettings{}, empty)

	day := 3
	fee := decimal.RequireFromString("15.00")
	require.NoError(t, store.SaveSettings(ctx, "o-1", rent.OwnerSettings{BusinessName: "Acme", ContactInfo: "555", DefaultDueDay: &day, DefaultLateFeeFlat: &fee}))
	require.NoError(t, store.SaveSettings(ctx, "o-1", rent.OwnerSettings{BusinessName: "Acme Homes", ContactInfo: "555", DefaultDueDay: &day, DefaultLateFeeFlat: &fee}))

	got, err := store.GetSettings(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Homes", got.BusinessName)
	require.NotNil(t, got.DefaultDueDay)
	assert.Equal(t, 3, *got.DefaultDueDay)
	require.NotNil(t, got.DefaultLateFeeFlat)
	assert.True(t, got.DefaultLateFeeFlat.Equal(fee))
}
