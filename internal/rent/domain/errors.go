package rent

import "errors"

var (
	// ErrInvalidPeriod is returned when a period key is not in YYYY-MM form.
	ErrInvalidPeriod = errors.New("rent: invalid period")
	// ErrEmptyOwnerID is returned when an owner id is empty.
	ErrEmptyOwnerID = errors.New("rent: empty owner id")
	// ErrEmptyTenantID is returned when a tenant id is empty.
	ErrEmptyTenantID = errors.New("rent: empty tenant id")
	// ErrTenantNotFound is returned when a tenant does not exist for the owner.
	ErrTenantNotFound = errors.New("rent: tenant not found")
	// ErrNonPositiveAmount is returned when a payment amount is zero or negative.
	ErrNonPositiveAmount = errors.New("rent: non-positive amount")
)
