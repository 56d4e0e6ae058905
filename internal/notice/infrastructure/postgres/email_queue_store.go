package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	notice "rentnotice-cloud/internal/notice/domain"
)

const defaultEmailQueueTable = "email_queue"

// EmailQueueStore is a Postgres email queue.
type EmailQueueStore struct {
	db    *sql.DB
	table string
}

// EmailQueueOption configures the queue store.
type EmailQueueOption func(*EmailQueueStore)

// WithEmailQueueTable overrides the table name.
func WithEmailQueueTable(table string) EmailQueueOption {
	return func(store *EmailQueueStore) {
		if table != "" {
			store.table = table
		}
	}
}

// NewEmailQueueStore constructs a queue store.
func NewEmailQueueStore(db *sql.DB, opts ...EmailQueueOption) *EmailQueueStore {
	store := &EmailQueueStore{db: db, table: defaultEmailQueueTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Enqueue writes a pending message.
func (s *EmailQueueStore) Enqueue(ctx context.Context, msg notice.EmailMessage) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("email queue: nil db")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, owner_id, notice_id, recipient, subject, body, status, attempts, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, 'pending', 0, $7
)
ON CONFLICT (id)
DO NOTHING`, s.table)

	_, err := s.db.ExecContext(ctx, query, msg.ID, msg.OwnerID, msg.NoticeID, msg.To, msg.Subject, msg.Body, msg.CreatedAt)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// ListPending returns pending messages oldest first.
func (s *EmailQueueStore) ListPending(ctx context.Context, limit int) ([]notice.EmailMessage, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("email queue: nil db")
	}
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
SELECT id, owner_id, notice_id, recipient, subject, body, status, attempts, COALESCE(last_error, ''), created_at
FROM %s
WHERE status = 'pending'
ORDER BY created_at ASC
LIMIT $1`, s.table)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notice.EmailMessage
	for rows.Next() {
		var msg notice.EmailMessage
		var status string
		if err := rows.Scan(&msg.ID, &msg.OwnerID, &msg.NoticeID, &msg.To, &msg.Subject, &msg.Body, &status, &msg.Attempts, &msg.LastError, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Status = notice.EmailStatus(status)
		msg.CreatedAt = msg.CreatedAt.UTC()
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSent marks a message as sent.
func (s *EmailQueueStore) MarkSent(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("email queue: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s
SET status = 'sent', sent_at = $1, attempts = attempts + 1
WHERE id = $2`, s.table)
	_, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

// MarkFailed marks a message as failed and increments attempts.
func (s *EmailQueueStore) MarkFailed(ctx context.Context, id string, reason string) error {
	if s == nil || s.db == nil {
		return errors.New("email queue: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s
SET status = 'failed', attempts = attempts + 1, last_error = $1
WHERE id = $2`, s.table)
	_, err := s.db.ExecContext(ctx, query, reason, id)
	return err
}
