package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const isoDate = "2006-01-02"

// Round2 rounds a monetary amount to 2 decimal places. shopspring's Round
// is half-away-from-zero, which is what installment amounts use.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AddMonths advances a date by n calendar months, preserving the day of
// month. When the target month is shorter the day is clamped to its last
// day (Jan 31 + 1 month = Feb 28/29), unlike time.AddDate which rolls over.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DateBefore compares two timestamps at day granularity, ignoring the time
// of day. Equivalent to comparing their ISO dates lexicographically.
func DateBefore(a, b time.Time) bool {
	return a.Format(isoDate) < b.Format(isoDate)
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Format(isoDate) == b.Format(isoDate)
}

// Truncate strips the time-of-day component.
func Truncate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ParseDate parses an ISO yyyy-mm-dd date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(isoDate, s)
}

// FormatDate renders a timestamp as an ISO yyyy-mm-dd date.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}
