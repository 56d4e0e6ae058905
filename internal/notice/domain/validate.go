package notice

import (
	"strings"

	rent "rentnotice-cloud/internal/rent/domain"
)

const (
	msgMissingName         = "Tenant name is missing."
	msgInvalidRent         = "Tenant rent amount is missing or invalid."
	msgMissingDueDay       = "Tenant rent due day is missing."
	msgMissingBusinessName = "Your business/management name is missing in Settings."
	msgMissingContactInfo  = "Your contact info is missing in Settings."
	msgMissingEmail        = "Tenant email is missing. You will not be able to send this notice by email until it is added."
	msgMissingUnit         = "Tenant unit is blank. Consider adding it for clarity."
)

// Validation lists blocking issues and warnings for a notice.
type Validation struct {
	Blocking []string `json:"blocking"`
	Warnings []string `json:"warnings"`
}

// Validate checks tenant and owner fields. Every check runs; the message order is fixed.
func Validate(tenant rent.Tenant, settings rent.OwnerSettings) Validation {
	v := Validation{Blocking: []string{}, Warnings: []string{}}

	if strings.TrimSpace(tenant.Name) == "" {
		v.Blocking = append(v.Blocking, msgMissingName)
	}
	if !tenant.Rent.IsPositive() {
		v.Blocking = append(v.Blocking, msgInvalidRent)
	}
	if tenant.DueDay <= 0 {
		v.Blocking = append(v.Blocking, msgMissingDueDay)
	}
	if strings.TrimSpace(settings.BusinessName) == "" {
		v.Blocking = append(v.Blocking, msgMissingBusinessName)
	}
	if strings.TrimSpace(settings.ContactInfo) == "" {
		v.Blocking = append(v.Blocking, msgMissingContactInfo)
	}

	if strings.TrimSpace(tenant.Email) == "" {
		v.Warnings = append(v.Warnings, msgMissingEmail)
	}
	if strings.TrimSpace(tenant.Unit) == "" {
		v.Warnings = append(v.Warnings, msgMissingUnit)
	}
	return v
}

// CanPersist reports whether the notice may be stored.
func (v Validation) CanPersist() bool { return len(v.Blocking) == 0 }

// Err returns a *ValidationError when there are blocking issues.
func (v Validation) Err() error {
	if v.CanPersist() {
		return nil
	}
	return &ValidationError{Blocking: append([]string(nil), v.Blocking...)}
}

// CanSend checks the persist rules plus the recipient required for email delivery.
func (v Validation) CanSend(recipient string) error {
	if err := v.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(recipient) == "" {
		return ErrMissingRecipient
	}
	return nil
}
