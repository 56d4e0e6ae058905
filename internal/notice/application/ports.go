package application

import (
	"context"

	notice "rentnotice-cloud/internal/notice/domain"
)

// NoticeStore persists composed notices. GetNotice returns nil, nil when absent.
type NoticeStore interface {
	SaveNotice(ctx context.Context, ownerID string, n notice.ComposedNotice) (string, error)
	ListNotices(ctx context.Context, ownerID string) ([]notice.ComposedNotice, error)
	GetNotice(ctx context.Context, ownerID, noticeID string) (*notice.ComposedNotice, error)
}

// EmailQueue holds notice emails until the dispatcher relays them.
type EmailQueue interface {
	Enqueue(ctx context.Context, msg notice.EmailMessage) (string, error)
	ListPending(ctx context.Context, limit int) ([]notice.EmailMessage, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// EmailSender delivers one queued email.
type EmailSender interface {
	Send(ctx context.Context, msg notice.EmailMessage) error
}
