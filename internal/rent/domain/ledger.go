package rent

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerPeriods is the number of months covered by a ledger.
const LedgerPeriods = 12

// Status classifies a ledger row.
type Status string

const (
	StatusPaid          Status = "Paid"
	StatusPartial       Status = "Partial"
	StatusUnpaid        Status = "Unpaid"
	StatusNotApplicable Status = "NotApplicable"
)

// LedgerRow summarizes one period for a tenant.
type LedgerRow struct {
	Period   PeriodKey       `json:"period"`
	Expected decimal.Decimal `json:"expected"`
	Paid     decimal.Decimal `json:"paid"`
	Status   Status          `json:"status"`
}

// BuildLedger returns the last LedgerPeriods periods ending at the period of asOf,
// newest first. Expected is the tenant's current rent for every period.
// Payments for other tenants or outside the window are ignored.
func BuildLedger(tenant Tenant, payments []Payment, asOf time.Time) []LedgerRow {
	current := CurrentPeriod(asOf)

	paidByPeriod := make(map[PeriodKey]decimal.Decimal, LedgerPeriods)
	for _, p := range payments {
		if p.TenantID != tenant.ID || p.Period == "" {
			continue
		}
		paidByPeriod[p.Period] = paidByPeriod[p.Period].Add(p.Amount)
	}

	rows := make([]LedgerRow, 0, LedgerPeriods)
	for i := 0; i < LedgerPeriods; i++ {
		period := current.Shift(-i)
		expected := tenant.Rent
		paid := paidByPeriod[period]
		rows = append(rows, LedgerRow{
			Period:   period,
			Expected: expected,
			Paid:     paid,
			Status:   Classify(expected, paid),
		})
	}
	return rows
}

// Classify derives the status of a period from expected and paid amounts.
func Classify(expected, paid decimal.Decimal) Status {
	switch {
	case !expected.IsPositive():
		return StatusNotApplicable
	case paid.GreaterThanOrEqual(expected):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// LedgerSummary aggregates a ledger.
type LedgerSummary struct {
	Expected    decimal.Decimal `json:"expected"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Counts      map[Status]int  `json:"counts"`
}

// Summarize totals a ledger. Outstanding only counts shortfalls of applicable periods,
// overpayments do not offset other months.
func Summarize(rows []LedgerRow) LedgerSummary {
	summary := LedgerSummary{Counts: make(map[Status]int, 4)}
	for _, row := range rows {
		summary.Counts[row.Status]++
		if row.Status == StatusNotApplicable {
			continue
		}
		summary.Expected = summary.Expected.Add(row.Expected)
		summary.Paid = summary.Paid.Add(row.Paid)
		if short := row.Expected.Sub(row.Paid); short.IsPositive() {
			summary.Outstanding = summary.Outstanding.Add(short)
		}
	}
	return summary
}
