package records

import (
	"strings"
	"time"
)

// Cycle is a billing cycle.
type Cycle int

// Billing cycles.
const (
	CycleUnknown Cycle = iota
	CycleMonthly
	CycleYearly
)

// ParseCycle maps a billing cycle option to a Cycle. "Annual" and "Yearly"
// are the same cycle.
func ParseCycle(s string) Cycle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return CycleMonthly
	case "yearly", "annual", "annually":
		return CycleYearly
	}
	return CycleUnknown
}

// Months returns the length of one cycle in months.
func (c Cycle) Months() int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleYearly:
		return 12
	}
	return 0
}

// AddMonths adds n months to t, clamping the day to the end of the target
// month (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
