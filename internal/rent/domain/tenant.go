package rent

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant is a renter owned by a landlord account.
type Tenant struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Email       string          `json:"email"`
	Rent        decimal.Decimal `json:"rent"`
	DueDay      int             `json:"due_day"`
	LateFeeFlat decimal.Decimal `json:"late_fee_flat"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsLate reports whether rent for the month containing asOf is past its due day.
// A tenant without a due day is never late.
func (t Tenant) IsLate(asOf time.Time) bool {
	if t.DueDay <= 0 {
		return false
	}
	return asOf.Day() > t.DueDay
}

// Payment is an append-only rent payment for one period.
type Payment struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	OwnerID   string          `json:"owner_id"`
	Period    PeriodKey       `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// OwnerSettings holds the landlord identity printed on notices.
type OwnerSettings struct {
	BusinessName       string           `json:"business_name"`
	ContactInfo        string           `json:"contact_info"`
	DefaultDueDay      *int             `json:"default_due_day,omitempty"`
	DefaultLateFeeFlat *decimal.Decimal `json:"default_late_fee_flat,omitempty"`
}

// ApplyDefaults fills the tenant's due day and late fee from the owner defaults
// when the tenant record leaves them unset.
func (s OwnerSettings) ApplyDefaults(t Tenant, dueDaySet, lateFeeSet bool) Tenant {
	if !dueDaySet && s.DefaultDueDay != nil {
		t.DueDay = *s.DefaultDueDay
	}
	if !lateFeeSet && s.DefaultLateFeeFlat != nil {
		t.LateFeeFlat = *s.DefaultLateFeeFlat
	}
	return t
}
