// Package relay delivers queued notice emails through an HTTP mail relay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	notice "rentnotice-cloud/internal/notice/domain"
)

// WebhookSender posts each email as JSON to a relay endpoint.
type WebhookSender struct {
	url    string
	from   string
	client *http.Client
}

type webhookPayload struct {
	MsgType  string      `json:"msgtype"`
	From     string      `json:"from,omitempty"`
	To       string      `json:"to"`
	Subject  string      `json:"subject"`
	Text     webhookText `json:"text"`
	NoticeID string      `json:"notice_id"`
	MailID   string      `json:"mail_id"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookSender constructs a sender. timeout <= 0 defaults to ten seconds.
func NewWebhookSender(url, from string, timeout time.Duration) (*WebhookSender, error) {
	if url == "" {
		return nil, errors.New("webhook sender: empty url")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{url: url, from: from, client: &http.Client{Timeout: timeout}}, nil
}

// Send posts one email to the relay.
func (s *WebhookSender) Send(ctx context.Context, msg notice.EmailMessage) error {
	if s == nil || s.url == "" {
		return errors.New("webhook sender: empty url")
	}
	if msg.To == "" {
		return notice.ErrMissingRecipient
	}
	body, err := json.Marshal(webhookPayload{
		MsgType:  "text",
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		Text:     webhookText{Content: msg.Body},
		NoticeID: msg.NoticeID,
		MailID:   msg.ID,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook sender: status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes emails to a logger instead of delivering them.
type LogSender struct {
	Printf func(format string, args ...any)
}

// Send implements the email sender contract.
func (s LogSender) Send(ctx context.Context, msg notice.EmailMessage) error {
	_ = ctx
	if s.Printf != nil {
		s.Printf("email (not relayed): id=%s to=%s subject=%q", msg.ID, msg.To, msg.Subject)
	}
	return nil
}
