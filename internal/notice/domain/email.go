package notice

import (
	"strings"
	"time"
)

// EmailStatus tracks delivery of a queued email.
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// EmailMessage is a notice queued for delivery to the tenant.
type EmailMessage struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"owner_id"`
	NoticeID  string      `json:"notice_id"`
	To        string      `json:"to"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Status    EmailStatus `json:"status"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	SentAt    *time.Time  `json:"sent_at,omitempty"`
}

// NewEmail builds the pending message that delivers a stored notice.
func NewEmail(ownerID, noticeID, recipient string, n ComposedNotice) EmailMessage {
	return EmailMessage{
		OwnerID:   ownerID,
		NoticeID:  noticeID,
		To:        strings.TrimSpace(recipient),
		Subject:   Subject + " - " + n.Tenant.Name,
		Body:      n.Text,
		Status:    EmailPending,
		CreatedAt: n.CreatedAt,
	}
}
