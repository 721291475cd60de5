package schedule

import (
	"fmt"
	"strings"
)

// Mode selects how an event's times are expressed.
type Mode string

const (
	// ModeUniform applies one start/end time to every day of the range.
	ModeUniform Mode = "uniform"
	// ModeAdvanced gives each day of the range its own start/end time.
	ModeAdvanced Mode = "advanced"
)

// ParseMode accepts "uniform" or "advanced", case-insensitively.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeUniform:
		return ModeUniform, nil
	case ModeAdvanced:
		return ModeAdvanced, nil
	default:
		return "", fmt.Errorf("schedule: unknown time mode %q", value)
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeUniform || m == ModeAdvanced
}

// SwitchResult describes what a mode switch did to the per-day table.
type SwitchResult struct {
	From      Mode
	To        Mode
	Populated []Date
	Discarded int
}

// Switch moves table from mode `from` to mode `to` over [start, end].
//
// Switching to advanced resyncs the table using defaults; existing entries are kept. It
// fails with ErrRangeTooLong when the range exceeds MaxTableDays.
// Switching to uniform clears the table: per-day data is discarded, not hidden, and
// Discarded reports how many days were lost.
func Switch(table *DaySchedule, from, to Mode, start, end Date, defaults Interval) (SwitchResult, error) {
	if !to.Valid() {
		return SwitchResult{}, fmt.Errorf("schedule: unknown time mode %q", to)
	}
	result := SwitchResult{From: from, To: to}
	switch to {
	case ModeAdvanced:
		if err := CheckTableRange(start, end); err != nil {
			return SwitchResult{}, err
		}
		result.Populated = table.Resync(start, end, defaults).Added
	case ModeUniform:
		result.Discarded = table.Clear()
		table.SetRange(start, end)
	}
	return result, nil
}
