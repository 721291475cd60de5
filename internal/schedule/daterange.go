package schedule

import (
	"errors"
	"fmt"
)

// MaxTableDays bounds the number of days a per-day time table may cover.
const MaxTableDays = 366

// ErrRangeTooLong is returned when per-day times are requested over more than MaxTableDays days.
var ErrRangeTooLong = errors.New("schedule: date range too long for per-day times")

// EnumerateDays returns every calendar day from start to end inclusive, ascending.
// The result is empty when end is before start or either bound is unset.
func EnumerateDays(start, end Date) []Date {
	n := SpanDays(start, end)
	if n == 0 {
		return nil
	}
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDays(i))
	}
	return days
}

// Contains reports whether d lies within [start, end].
func Contains(start, end, d Date) bool {
	if start.IsZero() || end.IsZero() || d.IsZero() {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// SpanDays returns the number of days in [start, end], or 0 when the range is empty.
func SpanDays(start, end Date) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return start.DaysUntil(end) + 1
}

// CheckTableRange returns ErrRangeTooLong when [start, end] is too long to hold per-day times.
func CheckTableRange(start, end Date) error {
	if n := SpanDays(start, end); n > MaxTableDays {
		return fmt.Errorf("%w: %s to %s spans %d days", ErrRangeTooLong, start, end, n)
	}
	return nil
}
