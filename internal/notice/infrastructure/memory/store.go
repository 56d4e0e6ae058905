package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	notice "rentnotice-cloud/internal/notice/domain"
)

type storedNotice struct {
	ownerID string
	notice  notice.ComposedNotice
}

// NoticeStore is an in-memory notice store.
type NoticeStore struct {
	mu      sync.RWMutex
	notices map[string]storedNotice
}

// NewNoticeStore constructs an empty store.
func NewNoticeStore() *NoticeStore {
	return &NoticeStore{notices: make(map[string]storedNotice)}
}

// SaveNotice stores a notice, assigning an id when it has none.
func (s *NoticeStore) SaveNotice(ctx context.Context, ownerID string, n notice.ComposedNotice) (string, error) {
	_ = ctx
	if ownerID == "" {
		return "", errors.New("memory notice store: empty owner id")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.notices[n.ID] = storedNotice{ownerID: ownerID, notice: n}
	s.mu.Unlock()
	return n.ID, nil
}

// ListNotices returns the owner's notices newest first.
func (s *NoticeStore) ListNotices(ctx context.Context, ownerID string) ([]notice.ComposedNotice, error) {
	_ = ctx
	s.mu.RLock()
	var out []notice.ComposedNotice
	for _, stored := range s.notices {
		if stored.ownerID == ownerID {
			out = append(out, stored.notice)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetNotice loads one notice scoped to its owner.
func (s *NoticeStore) GetNotice(ctx context.Context, ownerID, noticeID string) (*notice.ComposedNotice, error) {
	_ = ctx
	s.mu.RLock()
	stored, ok := s.notices[noticeID]
	s.mu.RUnlock()
	if !ok || stored.ownerID != ownerID {
		return nil, nil
	}
	n := stored.notice
	return &n, nil
}

// EmailQueue is an in-memory email queue.
type EmailQueue struct {
	mu    sync.Mutex
	order []string
	byID  map[string]notice.EmailMessage
	now   func() time.Time
}

// NewEmailQueue constructs an empty queue.
func NewEmailQueue() *EmailQueue {
	return &EmailQueue{byID: make(map[string]notice.EmailMessage), now: func() time.Time { return time.Now().UTC() }}
}

// Enqueue adds a pending message.
func (q *EmailQueue) Enqueue(ctx context.Context, msg notice.EmailMessage) (string, error) {
	_ = ctx
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Status = notice.EmailPending
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.byID[msg.ID]; exists {
		return msg.ID, nil
	}
	q.order = append(q.order, msg.ID)
	q.byID[msg.ID] = msg
	return msg.ID, nil
}

// ListPending returns pending messages oldest first.
func (q *EmailQueue) ListPending(ctx context.Context, limit int) ([]notice.EmailMessage, error) {
	_ = ctx
	if limit <= 0 {
		limit = 50
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []notice.EmailMessage
	for _, id := range q.order {
		if msg := q.byID[id]; msg.Status == notice.EmailPending {
			out = append(out, msg)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// MarkSent marks a message delivered.
func (q *EmailQueue) MarkSent(ctx context.Context, id string) error {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	msg, ok := q.byID[id]
	if !ok {
		return errors.New("memory email queue: unknown id")
	}
	now := q.now()
	msg.Status = notice.EmailSent
	msg.Attempts++
	msg.SentAt = &now
	q.byID[id] = msg
	return nil
}

// MarkFailed marks a message failed and records the reason.
func (q *EmailQueue) MarkFailed(ctx context.Context, id string, reason string) error {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	msg, ok := q.byID[id]
	if !ok {
		return errors.New("memory email queue: unknown id")
	}
	msg.Status = notice.EmailFailed
	msg.Attempts++
	msg.LastError = reason
	q.byID[id] = msg
	return nil
}

// Messages returns every queued message in enqueue order.
func (q *EmailQueue) Messages() []notice.EmailMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notice.EmailMessage, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.byID[id])
	}
	return out
}
