package billing

import (
	"fmt"
	"time"

	"github.com/rentflow/backend/internal/domain/shared"
)

const (
	minPeriodYear = 2000
	maxPeriodYear = 2100
	// selectableYears is how many years the generation form offers, counting the current one
	selectableYears = 6
)

// ErrInvalidPeriod is returned for malformed billing periods
var ErrInvalidPeriod = shared.NewDomainError("INVALID_PERIOD", "Billing period must be a valid YYYY-MM month")

// Period is a calendar billing month
type Period struct {
	year  int
	month time.Month
}

// NewPeriod builds a period from separately selected year and month components
func NewPeriod(year, month int) (Period, error) {
	if year < minPeriodYear || year > maxPeriodYear || month < 1 || month > 12 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{year: year, month: time.Month(month)}, nil
}

// ParsePeriod parses a YYYY-MM string
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return NewPeriod(t.Year(), int(t.Month()))
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// Year returns the period's year
func (p Period) Year() int {
	return p.year
}

// Month returns the period's month
func (p Period) Month() time.Month {
	return p.month
}

// IsZero reports whether the period is unset
func (p Period) IsZero() bool {
	return p.year == 0
}

// Before reports whether p is earlier than other
func (p Period) Before(other Period) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.month < other.month
}

// String formats the period as YYYY-MM
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// SelectableYears lists the years offered for generation, newest first
func SelectableYears(now time.Time) []int {
	years := make([]int, selectableYears)
	for i := range years {
		years[i] = now.Year() - i
	}
	return years
}
