package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	rent "rentnotice-cloud/internal/rent/domain"
)

// Repository persists tenants, payments and owner settings.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const tenantColumns = `id, owner_id, name, unit, email, rent, due_day, late_fee_flat, created_at`

// GetTenant loads a tenant scoped to its owner.
func (r *Repository) GetTenant(ctx context.Context, ownerID, tenantID string) (*rent.Tenant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rent repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+tenantColumns+`
FROM tenants
WHERE owner_id = $1 AND id = $2`, ownerID, tenantID)
	return scanTenant(row)
}

// ListTenants returns the owner's tenants ordered by name.
func (r *Repository) ListTenants(ctx context.Context, ownerID string) ([]rent.Tenant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rent repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+tenantColumns+`
FROM tenants
WHERE owner_id = $1
ORDER BY name ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []rent.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTenant inserts a tenant.
func (r *Repository) CreateTenant(ctx context.Context, tenant rent.Tenant) error {
	if r == nil || r.db == nil {
		return errors.New("rent repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tenants (
	id, owner_id, name, unit, email, rent, due_day, late_fee_flat, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`, tenant.ID, tenant.OwnerID, tenant.Name, tenant.Unit, tenant.Email, tenant.Rent, tenant.DueDay, tenant.LateFeeFlat, tenant.CreatedAt)
	return err
}

// ListPayments returns a tenant's payments oldest first.
func (r *Repository) ListPayments(ctx context.Context, ownerID, tenantID string) ([]rent.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rent repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, owner_id, period, amount, created_at
FROM payments
WHERE owner_id = $1 AND tenant_id = $2
ORDER BY created_at ASC, id ASC`, ownerID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []rent.Payment
	for rows.Next() {
		var p rent.Payment
		var period string
		if err := rows.Scan(&p.ID, &p.TenantID, &p.OwnerID, &period, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Period = rent.PeriodKey(period)
		p.CreatedAt = p.CreatedAt.UTC()
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RecordPayment appends a payment.
func (r *Repository) RecordPayment(ctx context.Context, payment rent.Payment) error {
	if r == nil || r.db == nil {
		return errors.New("rent repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payments (
	id, tenant_id, owner_id, period, amount, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6
)`, payment.ID, payment.TenantID, payment.OwnerID, payment.Period.String(), payment.Amount, payment.CreatedAt)
	return err
}

// GetSettings returns the owner's settings or the zero value.
func (r *Repository) GetSettings(ctx context.Context, ownerID string) (rent.OwnerSettings, error) {
	if r == nil || r.db == nil {
		return rent.OwnerSettings{}, errors.New("rent repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT business_name, contact_info, default_due_day, default_late_fee_flat
FROM owner_settings
WHERE owner_id = $1`, ownerID)

	var s rent.OwnerSettings
	var dueDay sql.NullInt64
	var lateFee decimal.NullDecimal
	if err := row.Scan(&s.BusinessName, &s.ContactInfo, &dueDay, &lateFee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rent.OwnerSettings{}, nil
		}
		return rent.OwnerSettings{}, err
	}
	if dueDay.Valid {
		day := int(dueDay.Int64)
		s.DefaultDueDay = &day
	}
	if lateFee.Valid {
		fee := lateFee.Decimal
		s.DefaultLateFeeFlat = &fee
	}
	return s, nil
}

// SaveSettings creates or replaces the owner's settings.
func (r *Repository) SaveSettings(ctx context.Context, ownerID string, settings rent.OwnerSettings) error {
	if r == nil || r.db == nil {
		return errors.New("rent repo: nil db")
	}
	var dueDay sql.NullInt64
	if settings.DefaultDueDay != nil {
		dueDay = sql.NullInt64{Int64: int64(*settings.DefaultDueDay), Valid: true}
	}
	var lateFee decimal.NullDecimal
	if settings.DefaultLateFeeFlat != nil {
		lateFee = decimal.NullDecimal{Decimal: *settings.DefaultLateFeeFlat, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO owner_settings (
	owner_id, business_name, contact_info, default_due_day, default_late_fee_flat, updated_at
) VALUES (
	$1,$2,$3,$4,$5,NOW()
)
ON CONFLICT (owner_id)
DO UPDATE SET
	business_name = EXCLUDED.business_name,
	contact_info = EXCLUDED.contact_info,
	default_due_day = EXCLUDED.default_due_day,
	default_late_fee_flat = EXCLUDED.default_late_fee_flat,
	updated_at = NOW()`,
		ownerID, settings.BusinessName, settings.ContactInfo, dueDay, lateFee,
	)
	return err
}

func scanTenant(row rowScanner) (*rent.Tenant, error) {
	var t rent.Tenant
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&t.Unit,
		&t.Email,
		&t.Rent,
		&t.DueDay,
		&t.LateFeeFlat,
		&t.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
