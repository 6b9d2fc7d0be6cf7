package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(2024, 8)
	require.NoError(t, err)
	assert.Equal(t, "2024-08", p.String())
	assert.Equal(t, 2024, p.Year())
	assert.Equal(t, time.August, p.Month())

	for _, tc := range []struct{ year, month int }{{2024, 0}, {2024, 13}, {1999, 5}, {2101, 1}} {
		_, err := NewPeriod(tc.year, tc.month)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-01", p.String())

	for _, s := range []string{"", "2025", "2025-1x", "2025/01", "2025-13"} {
		_, err := ParsePeriod(s)
		assert.ErrorIs(t, err, ErrInvalidPeriod, s)
	}
}

func TestPeriod_Before(t *testing.T) {
	jul, _ := NewPeriod(2024, 7)
	aug, _ := NewPeriod(2024, 8)
	jan, _ := NewPeriod(2025, 1)

	assert.True(t, jul.Before(aug))
	assert.True(t, aug.Before(jan))
	assert.False(t, jan.Before(jul))
	assert.False(t, aug.Before(aug))
}

func TestSelectableYears(t *testing.T) {
	years := SelectableYears(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []int{2025, 2024, 2023, 2022, 2021, 2020}, years)
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-12", p.String())
	assert.True(t, Period{}.IsZero())
	assert.Equal(t, "", Period{}.String())
}
