package notice

import (
	"errors"
	"strings"
)

var (
	// ErrNoticeNotFound is returned when a stored notice does not exist.
	ErrNoticeNotFound = errors.New("notice: not found")
	// ErrMissingRecipient is returned when a notice is sent without an email address.
	ErrMissingRecipient = errors.New("notice: missing recipient email")
)

// ValidationError reports blocking issues that prevent persisting or sending a notice.
type ValidationError struct {
	Blocking []string
}

func (e *ValidationError) Error() string {
	return "notice: blocked: " + strings.Join(e.Blocking, " ")
}
