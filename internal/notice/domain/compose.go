package notice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	rent "rentnotice-cloud/internal/rent/domain"
)

const (
	// Subject is the notice heading, also used as the document title.
	Subject = "Late Rent Notice"

	placeholderBusinessName = "[Your Company Name]"
	placeholderContactInfo  = "[Your Contact Info]"

	dateLayout = "January 2, 2006"
)

// EditableSections are the free-text parts an owner supplies per notice.
type EditableSections struct {
	Intro               string `json:"intro" yaml:"intro"`
	PaymentInstructions string `json:"payment_instructions" yaml:"payment_instructions"`
	ExtraNotes          string `json:"extra_notes" yaml:"extra_notes"`
}

// TenantSnapshot is the tenant data captured when a notice is composed.
type TenantSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Rent        decimal.Decimal `json:"rent"`
	DueDay      int             `json:"due_day"`
	LateFeeFlat decimal.Decimal `json:"late_fee_flat"`
}

// OwnerSnapshot is the signer identity captured when a notice is composed.
type OwnerSnapshot struct {
	BusinessName string `json:"business_name"`
	ContactInfo  string `json:"contact_info"`
}

// ComposedNotice is a fully composed notice ready for layout or storage.
type ComposedNotice struct {
	ID          string          `json:"id,omitempty"`
	Tenant      TenantSnapshot  `json:"tenant"`
	Owner       OwnerSnapshot   `json:"owner"`
	Period      rent.PeriodKey  `json:"period"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	LateFee     decimal.Decimal `json:"late_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Text        string          `json:"text"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Amounts returns base rent, late fee and their total.
func Amounts(tenant rent.Tenant) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	base := tenant.Rent
	lateFee := tenant.LateFeeFlat
	return base, lateFee, base.Add(lateFee)
}

// Compose renders the notice body. asOf supplies the letter date.
// The due day is written as an English ordinal ("due on the 1st of this
// month"), not as a bare number.
func Compose(tenant rent.Tenant, settings rent.OwnerSettings, sections EditableSections, asOf time.Time) string {
	base, lateFee, total := Amounts(tenant)
	name := strings.TrimSpace(tenant.Name)
	unit := strings.TrimSpace(tenant.Unit)

	businessName := strings.TrimSpace(settings.BusinessName)
	if businessName == "" {
		businessName = placeholderBusinessName
	}
	contactInfo := strings.TrimSpace(settings.ContactInfo)
	if contactInfo == "" {
		contactInfo = placeholderContactInfo
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	paragraph := func(s string) {
		if s = strings.TrimSpace(s); s == "" {
			return
		}
		line(s)
		line("")
	}

	line(asOf.Format(dateLayout))
	line("")
	line(name)
	if unit != "" {
		line("Unit " + unit)
	}
	line("")
	line("RE: " + Subject)
	line("")
	paragraph(sections.Intro)
	line(fmt.Sprintf("Dear %s,", name))
	line("")

	unitPhrase := ""
	if unit != "" {
		unitPhrase = "Unit " + unit + " "
	}
	paragraph(fmt.Sprintf(
		"Our records indicate that your rent for %sin the amount of %s was due on the %s of this month and has not yet been received.",
		unitPhrase, formatMoney(base), ordinal(tenant.DueDay),
	))
	paragraph(fmt.Sprintf(
		"In accordance with the terms of your lease, a late fee of %s has been applied, bringing your total amount due to %s.",
		formatMoney(lateFee), formatMoney(total),
	))
	paragraph(sections.PaymentInstructions)
	paragraph("Please pay the total amount due immediately to avoid further action.")
	paragraph("If you believe you have received this notice in error, please contact management as soon as possible.")
	paragraph(sections.ExtraNotes)
	line("Sincerely,")
	line(businessName)
	b.WriteString(contactInfo)
	return b.String()
}

// BuildNotice composes the text and captures the snapshot stored with it.
func BuildNotice(tenant rent.Tenant, settings rent.OwnerSettings, sections EditableSections, asOf time.Time) ComposedNotice {
	base, lateFee, total := Amounts(tenant)
	return ComposedNotice{
		Tenant: TenantSnapshot{
			ID:          tenant.ID,
			Name:        tenant.Name,
			Unit:        tenant.Unit,
			Rent:        tenant.Rent,
			DueDay:      tenant.DueDay,
			LateFeeFlat: tenant.LateFeeFlat,
		},
		Owner: OwnerSnapshot{
			BusinessName: settings.BusinessName,
			ContactInfo:  settings.ContactInfo,
		},
		Period:      rent.CurrentPeriod(asOf),
		BaseAmount:  base,
		LateFee:     lateFee,
		TotalAmount: total,
		Text:        Compose(tenant, settings, sections, asOf),
		CreatedAt:   asOf.UTC(),
	}
}

// HeaderLines returns the identity block printed under the document title.
func (n ComposedNotice) HeaderLines() []string {
	business := n.Owner.BusinessName
	if business == "" {
		business = placeholderBusinessName
	}
	tenant := n.Tenant.Name
	if n.Tenant.Unit != "" {
		tenant += ", Unit " + n.Tenant.Unit
	}
	return []string{
		"From: " + business,
		"To: " + tenant,
		"Period: " + n.Period.String(),
	}
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
