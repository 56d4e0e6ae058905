package rent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodKey identifies a calendar month as "YYYY-MM".
// The fixed-width format makes lexicographic order equal to chronological order.
type PeriodKey string

const periodLayout = "2006-01"

// CurrentPeriod returns the period containing asOf.
func CurrentPeriod(asOf time.Time) PeriodKey {
	return PeriodKey(asOf.Format(periodLayout))
}

// ParsePeriodKey validates a raw period string.
func ParsePeriodKey(value string) (PeriodKey, error) {
	value = strings.TrimSpace(value)
	if _, _, ok := splitPeriod(value); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	return PeriodKey(value), nil
}

// String returns the raw key.
func (k PeriodKey) String() string { return string(k) }

// Valid reports whether the key is a well-formed YYYY-MM value.
func (k PeriodKey) Valid() bool {
	_, _, ok := splitPeriod(string(k))
	return ok
}

// Shift adds delta whole months, rolling over year boundaries.
// A malformed key is returned unchanged.
func (k PeriodKey) Shift(delta int) PeriodKey {
	year, month, ok := splitPeriod(string(k))
	if !ok {
		return k
	}
	index := year*12 + (month - 1) + delta
	y := floorDiv(index, 12)
	m := index - y*12 + 1
	return PeriodKey(fmt.Sprintf("%04d-%02d", y, m))
}

// Start returns the first instant of the period in UTC.
func (k PeriodKey) Start() (time.Time, error) {
	year, month, ok := splitPeriod(string(k))
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(k))
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// ComparePeriods orders two keys; it returns -1, 0 or 1.
func ComparePeriods(a, b PeriodKey) int {
	return strings.Compare(string(a), string(b))
}

func splitPeriod(value string) (int, int, bool) {
	if len(value) != 7 || value[4] != '-' || !digits(value[:4]) || !digits(value[5:]) {
		return 0, 0, false
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(value[5:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func digits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
