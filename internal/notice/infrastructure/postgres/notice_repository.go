package postgres

import (
	"context"
	"database/sql"
	"errors"

	notice "rentnotice-cloud/internal/notice/domain"
	rent "rentnotice-cloud/internal/rent/domain"
)

// NoticeRepository persists composed notices.
type NoticeRepository struct {
	db *sql.DB
}

// NewNoticeRepository constructs a repository.
func NewNoticeRepository(db *sql.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const noticeColumns = `id, tenant_id, tenant_name, unit, rent, due_day, late_fee_flat,
	business_name, contact_info, period, base_amount, late_fee, total_amount, text, created_at`

// SaveNotice inserts a notice. The notice must carry its id.
func (r *NoticeRepository) SaveNotice(ctx context.Context, ownerID string, n notice.ComposedNotice) (string, error) {
	if r == nil || r.db == nil {
		return "", errors.New("notice repo: nil db")
	}
	if n.ID == "" {
		return "", errors.New("notice repo: empty notice id")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO notices (
	id, owner_id, tenant_id, tenant_name, unit, rent, due_day, late_fee_flat,
	business_name, contact_info, period, base_amount, late_fee, total_amount, text, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)`,
		n.ID, ownerID, n.Tenant.ID, n.Tenant.Name, n.Tenant.Unit, n.Tenant.Rent, n.Tenant.DueDay, n.Tenant.LateFeeFlat,
		n.Owner.BusinessName, n.Owner.ContactInfo, n.Period.String(), n.BaseAmount, n.LateFee, n.TotalAmount, n.Text, n.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// ListNotices returns the owner's notices newest first.
func (r *NoticeRepository) ListNotices(ctx context.Context, ownerID string) ([]notice.ComposedNotice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notice repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+noticeColumns+`
FROM notices
WHERE owner_id = $1
ORDER BY created_at DESC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notice.ComposedNotice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetNotice loads one notice scoped to its owner.
func (r *NoticeRepository) GetNotice(ctx context.Context, ownerID, noticeID string) (*notice.ComposedNotice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notice repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+noticeColumns+`
FROM notices
WHERE owner_id = $1 AND id = $2`, ownerID, noticeID)
	return scanNotice(row)
}

func scanNotice(row rowScanner) (*notice.ComposedNotice, error) {
	var n notice.ComposedNotice
	var period string
	if err := row.Scan(
		&n.ID,
		&n.Tenant.ID,
		&n.Tenant.Name,
		&n.Tenant.Unit,
		&n.Tenant.Rent,
		&n.Tenant.DueDay,
		&n.Tenant.LateFeeFlat,
		&n.Owner.BusinessName,
		&n.Owner.ContactInfo,
		&period,
		&n.BaseAmount,
		&n.LateFee,
		&n.TotalAmount,
		&n.Text,
		&n.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.Period = rent.PeriodKey(period)
	n.CreatedAt = n.CreatedAt.UTC()
	return &n, nil
}
