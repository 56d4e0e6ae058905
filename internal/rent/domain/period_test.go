package rent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKey_ShiftAcrossYearBoundary(t *testing.T) {
	assert.Equal(t, PeriodKey("2024-12"), PeriodKey("2025-01").Shift(-1))
	assert.Equal(t, PeriodKey("2025-01"), PeriodKey("2024-12").Shift(1))
	assert.Equal(t, PeriodKey("2023-11"), PeriodKey("2025-01").Shift(-14))
	assert.Equal(t, PeriodKey("2026-03"), PeriodKey("2025-03").Shift(12))
	assert.Equal(t, PeriodKey("2025-03"), PeriodKey("2025-03").Shift(0))
}

func TestPeriodKey_ShiftMalformedIsUnchanged(t *testing.T) {
	assert.Equal(t, PeriodKey("2025-13"), PeriodKey("2025-13").Shift(1))
	assert.Equal(t, PeriodKey(""), PeriodKey("").Shift(-3))
}

func TestCurrentPeriod(t *testing.T) {
	asOf := time.Date(2025, time.February, 28, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, PeriodKey("2025-02"), CurrentPeriod(asOf))
}

func TestComparePeriods(t *testing.T) {
	assert.Equal(t, -1, ComparePeriods("2024-12", "2025-01"))
	assert.Equal(t, 1, ComparePeriods("2025-10", "2025-09"))
	assert.Equal(t, 0, ComparePeriods("2025-10", "2025-10"))
}

func TestParsePeriodKey(t *testing.T) {
	key, err := ParsePeriodKey(" 2025-07 ")
	require.NoError(t, err)
	assert.Equal(t, PeriodKey("2025-07"), key)

	for _, raw := range []string{"", "2025-7", "2025/07", "2025-00", "2025-13", "+202-01", "abcd-01"} {
		_, err := ParsePeriodKey(raw)
		assert.ErrorIs(t, err, ErrInvalidPeriod, raw)
	}
}

func TestPeriodKey_Start(t *testing.T) {
	start, err := PeriodKey("2024-02").Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)

	_, err = PeriodKey("bad").Start()
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
