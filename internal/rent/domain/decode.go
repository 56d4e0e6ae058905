package rent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldError describes one rejected field of an inbound record.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// DecodeError is returned when an inbound record cannot be mapped to a domain value.
// Missing fields are reported rather than defaulted.
type DecodeError struct {
	Record string       `json:"record"`
	Fields []FieldError `json:"fields"`
}

func (e *DecodeError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Reason)
			continue
		}
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Sprintf("rent: decode %s: %s", e.Record, strings.Join(parts, "; "))
}

// TenantRecord is the inbound shape of a tenant.
type TenantRecord struct {
	Name        string           `json:"name" validate:"required"`
	Unit        string           `json:"unit"`
	Email       string           `json:"email" validate:"omitempty,email"`
	Rent        *decimal.Decimal `json:"rent" validate:"required"`
	DueDay      *int             `json:"due_day" validate:"omitempty,min=1,max=31"`
	LateFeeFlat *decimal.Decimal `json:"late_fee_flat"`
}

// PaymentRecord is the inbound shape of a payment.
type PaymentRecord struct {
	Period string           `json:"period" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// SettingsRecord is the inbound shape of owner settings.
type SettingsRecord struct {
	BusinessName       string           `json:"business_name"`
	ContactInfo        string           `json:"contact_info"`
	DefaultDueDay      *int             `json:"default_due_day" validate:"omitempty,min=1,max=31"`
	DefaultLateFeeFlat *decimal.Decimal `json:"default_late_fee_flat"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// DecodeTenant decodes a tenant record. The returned flags report whether
// due day and late fee were present so owner defaults can fill the gaps.
func DecodeTenant(data []byte) (Tenant, bool, bool, error) {
	var rec TenantRecord
	if err := decodeStrict("tenant", data, &rec); err != nil {
		return Tenant{}, false, false, err
	}
	var fields []FieldError
	if !rec.Rent.IsPositive() {
		fields = append(fields, FieldError{Field: "rent", Reason: "must be greater than zero"})
	}
	fields = checkCents(fields, "rent", *rec.Rent)
	if rec.LateFeeFlat != nil {
		if rec.LateFeeFlat.IsNegative() {
			fields = append(fields, FieldError{Field: "late_fee_flat", Reason: "must not be negative"})
		}
		fields = checkCents(fields, "late_fee_flat", *rec.LateFeeFlat)
	}
	if len(fields) > 0 {
		return Tenant{}, false, false, &DecodeError{Record: "tenant", Fields: fields}
	}

	tenant := Tenant{
		Name:  strings.TrimSpace(rec.Name),
		Unit:  strings.TrimSpace(rec.Unit),
		Email: strings.TrimSpace(rec.Email),
		Rent:  *rec.Rent,
	}
	if rec.DueDay != nil {
		tenant.DueDay = *rec.DueDay
	}
	if rec.LateFeeFlat != nil {
		tenant.LateFeeFlat = *rec.LateFeeFlat
	}
	return tenant, rec.DueDay != nil, rec.LateFeeFlat != nil, nil
}

// DecodePayment decodes a payment record.
func DecodePayment(data []byte) (PeriodKey, decimal.Decimal, error) {
	var rec PaymentRecord
	if err := decodeStrict("payment", data, &rec); err != nil {
		return "", decimal.Zero, err
	}
	var fields []FieldError
	period, err := ParsePeriodKey(rec.Period)
	if err != nil {
		fields = append(fields, FieldError{Field: "period", Reason: "must be YYYY-MM"})
	}
	if !rec.Amount.IsPositive() {
		fields = append(fields, FieldError{Field: "amount", Reason: "must be greater than zero"})
	}
	fields = checkCents(fields, "amount", *rec.Amount)
	if len(fields) > 0 {
		return "", decimal.Zero, &DecodeError{Record: "payment", Fields: fields}
	}
	return period, *rec.Amount, nil
}

// DecodeSettings decodes owner settings.
func DecodeSettings(data []byte) (OwnerSettings, error) {
	var rec SettingsRecord
	if err := decodeStrict("settings", data, &rec); err != nil {
		return OwnerSettings{}, err
	}
	if fee := rec.DefaultLateFeeFlat; fee != nil {
		var fields []FieldError
		if fee.IsNegative() {
			fields = append(fields, FieldError{Field: "default_late_fee_flat", Reason: "must not be negative"})
		}
		fields = checkCents(fields, "default_late_fee_flat", *fee)
		if len(fields) > 0 {
			return OwnerSettings{}, &DecodeError{Record: "settings", Fields: fields}
		}
	}
	return OwnerSettings{
		BusinessName:       strings.TrimSpace(rec.BusinessName),
		ContactInfo:        strings.TrimSpace(rec.ContactInfo),
		DefaultDueDay:      rec.DefaultDueDay,
		DefaultLateFeeFlat: rec.DefaultLateFeeFlat,
	}, nil
}

// checkCents rejects amounts finer than a cent. Stored amounts are
// NUMERIC(12,2) in Postgres.
func checkCents(fields []FieldError, field string, amount decimal.Decimal) []FieldError {
	if amount.Equal(amount.Round(2)) {
		return fields
	}
	return append(fields, FieldError{Field: field, Reason: "at most 2 decimal places"})
}

func decodeStrict(record string, data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &DecodeError{Record: record, Fields: []FieldError{{Reason: "empty body"}}}
		}
		return &DecodeError{Record: record, Fields: []FieldError{{Reason: err.Error()}}}
	}
	if err := recordValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &DecodeError{Record: record, Fields: []FieldError{{Reason: err.Error()}}}
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Reason: reasonFor(fe)})
		}
		return &DecodeError{Record: record, Fields: fields}
	}
	return nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be an email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
