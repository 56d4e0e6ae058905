// Package sqlite stores tenants, payments and owner settings in a local
// SQLite file for the noticectl tool.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	rent "rentnotice-cloud/internal/rent/domain"
)

//go:embed schema.sql
var schema string

// Store is a SQLite-backed tenant, payment and settings store.
type Store struct {
	db *sql.DB
}

// Open opens (creating when needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

const tenantColumns = `id, owner_id, name, unit, email, rent, due_day, late_fee_flat, created_at`

// GetTenant loads a tenant scoped to its owner.
func (s *Store) GetTenant(ctx context.Context, ownerID, tenantID string) (*rent.Tenant, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite store: nil db")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE owner_id = ? AND id = ?`, ownerID, tenantID)
	return scanTenant(row)
}

// ListTenants returns the owner's tenants ordered by name.
func (s *Store) ListTenants(ctx context.Context, ownerID string) ([]rent.Tenant, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite store: nil db")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE owner_id = ? ORDER BY name, id`, ownerID)
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
	return result, rows.Err()
}

// CreateTenant inserts a tenant.
func (s *Store) CreateTenant(ctx context.Context, tenant rent.Tenant) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store: nil db")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tenants (id, owner_id, name, unit, email, rent, due_day, late_fee_flat, created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		tenant.ID, tenant.OwnerID, tenant.Name, tenant.Unit, tenant.Email,
		tenant.Rent.String(), tenant.DueDay, tenant.LateFeeFlat.String(), tenant.CreatedAt.UTC())
	return err
}

// ListPayments returns a tenant's payments oldest first.
func (s *Store) ListPayments(ctx context.Context, ownerID, tenantID string) ([]rent.Payment, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite store: nil db")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, tenant_id, owner_id, period, amount, created_at
FROM payments
WHERE owner_id = ? AND tenant_id = ?
ORDER BY created_at, id`, ownerID, tenantID)
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
	return result, rows.Err()
}

// RecordPayment appends a payment.
func (s *Store) RecordPayment(ctx context.Context, payment rent.Payment) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store: nil db")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO payments (id, tenant_id, owner_id, period, amount, created_at)
VALUES (?,?,?,?,?,?)`,
		payment.ID, payment.TenantID, payment.OwnerID, payment.Period.String(), payment.Amount.String(), payment.CreatedAt.UTC())
	return err
}

// GetSettings returns the owner's settings or the zero value.
func (s *Store) GetSettings(ctx context.Context, ownerID string) (rent.OwnerSettings, error) {
	if s == nil || s.db == nil {
		return rent.OwnerSettings{}, errors.New("sqlite store: nil db")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT business_name, contact_info, default_due_day, default_late_fee_flat
FROM owner_settings WHERE owner_id = ?`, ownerID)

	var settings rent.OwnerSettings
	var dueDay sql.NullInt64
	var lateFee decimal.NullDecimal
	if err := row.Scan(&settings.BusinessName, &settings.ContactInfo, &dueDay, &lateFee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rent.OwnerSettings{}, nil
		}
		return rent.OwnerSettings{}, err
	}
	if dueDay.Valid {
		day := int(dueDay.Int64)
		settings.DefaultDueDay = &day
	}
	if lateFee.Valid {
		fee := lateFee.Decimal
		settings.DefaultLateFeeFlat = &fee
	}
	return settings, nil
}

// SaveSettings creates or replaces the owner's settings.
func (s *Store) SaveSettings(ctx context.Context, ownerID string, settings rent.OwnerSettings) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store: nil db")
	}
	var dueDay, lateFee any
	if settings.DefaultDueDay != nil {
		dueDay = *settings.DefaultDueDay
	}
	if settings.DefaultLateFeeFlat != nil {
		lateFee = settings.DefaultLateFeeFlat.String()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO owner_settings (owner_id, business_name, contact_info, default_due_day, default_late_fee_flat)
VALUES (?,?,?,?,?)
ON CONFLICT (owner_id) DO UPDATE SET
	business_name = excluded.business_name,
	contact_info = excluded.contact_info,
	default_due_day = excluded.default_due_day,
	default_late_fee_flat = excluded.default_late_fee_flat`,
		ownerID, settings.BusinessName, settings.ContactInfo, dueDay, lateFee)
	return err
}

func scanTenant(row rowScanner) (*rent.Tenant, error) {
	var t rent.Tenant
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Unit, &t.Email, &t.Rent, &t.DueDay, &t.LateFeeFlat, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
