package stock

import (
	"fmt"
	"time"
)

// periodLayout is the textual form of a Period, e.g. "2025-03"
const periodLayout = "2006-01"

// Period is a calendar month within which opening and closing balances are reconciled
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t. The date is taken in t's own location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "YYYY-MM" or a full "YYYY-MM-DD" date
func ParsePeriod(s string) (Period, error) {
	if t, err := time.Parse(periodLayout, s); err == nil {
		return PeriodOf(t), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM or YYYY-MM-DD", s)
	}
	return PeriodOf(t), nil
}

// Start returns the first day of the period at midnight UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the last day of the period at midnight UTC
func (p Period) LastDay() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Previous returns the period immediately before p
func (p Period) Previous() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

// Next returns the period immediately after p
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// Contains returns true if t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return PeriodOf(t) == p
}

// IsZero returns true for the zero Period
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String returns "YYYY-MM"
func (p Period) String() string {
	return p.Start().Format(periodLayout)
}

// PreviousPeriodLastDay returns the last day of the period before the one
// containing date. Rollover looks up the prior closing balance at this date.
func PreviousPeriodLastDay(date time.Time) time.Time {
	return PeriodOf(date).Start().AddDate(0, 0, -1)
}
