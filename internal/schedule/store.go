package schedule

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidDate is returned when a per-day entry is addressed outside the active range.
var ErrInvalidDate = errors.New("schedule: date outside active range")

// DefaultInterval is used for new days when no usable uniform times exist.
var DefaultInterval = Interval{Start: "09:00", End: "17:00"}

// Interval is the start and end wall-clock time of one day, kept as entered (HH:MM).
type Interval struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// DayEntry pairs a calendar day with its interval.
type DayEntry struct {
	Date     Date `json:"date"`
	Interval
}

// ResyncResult lists the days a Resync added and removed.
type ResyncResult struct {
	Added   []Date
	Removed []Date
}

// Changed reports whether the resync altered the table.
func (r ResyncResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// DaySchedule is the per-day time table used in advanced mode. It tracks the active
// date range separately from its entries so a cleared table still knows which days
// it would cover.
//
// A DaySchedule is not safe for concurrent mutation; the owning draft serializes access.
type DaySchedule struct {
	start   Date
	end     Date
	entries map[Date]Interval
}

// NewDaySchedule returns an empty table with no active range.
func NewDaySchedule() *DaySchedule {
	return &DaySchedule{entries: make(map[Date]Interval)}
}

// RestoreDaySchedule rebuilds a table from persisted state. Entries outside the range
// are dropped.
func RestoreDaySchedule(start, end Date, entries []DayEntry) *DaySchedule {
	s := NewDaySchedule()
	s.start, s.end = start, end
	for _, e := range entries {
		if Contains(start, end, e.Date) {
			s.entries[e.Date] = e.Interval
		}
	}
	return s
}

// Range returns the active range.
func (s *DaySchedule) Range() (Date, Date) {
	return s.start, s.end
}

// Resync aligns the table with [start, end]. Days that stay in range keep their entry,
// new days receive defaults and days that left the range are removed. Calling it again
// with the same range changes nothing.
func (s *DaySchedule) Resync(start, end Date, defaults Interval) ResyncResult {
	s.ensure()
	s.start, s.end = start, end

	var result ResyncResult
	wanted := make(map[Date]struct{})
	for _, day := range EnumerateDays(start, end) {
		wanted[day] = struct{}{}
		if _, ok := s.entries[day]; !ok {
			s.entries[day] = defaults
			result.Added = append(result.Added, day)
		}
	}
	for day := range s.entries {
		if _, ok := wanted[day]; !ok {
			delete(s.entries, day)
			result.Removed = append(result.Removed, day)
		}
	}
	sortDates(result.Removed)
	return result
}

// SetRange moves the active range without touching entries. Used while the table is
// cleared so a later Resync knows the current range.
func (s *DaySchedule) SetRange(start, end Date) {
	s.start, s.end = start, end
}

// SetEntry replaces the interval of a single day.
func (s *DaySchedule) SetEntry(day Date, start, end string) error {
	if !Contains(s.start, s.end, day) {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrInvalidDate, day, s.start, s.end)
	}
	s.ensure()
	s.entries[day] = Interval{Start: start, End: end}
	return nil
}

// Entry returns the interval for day.
func (s *DaySchedule) Entry(day Date) (Interval, bool) {
	iv, ok := s.entries[day]
	return iv, ok
}

// Entries returns all entries in ascending date order.
func (s *DaySchedule) Entries() []DayEntry {
	out := make([]DayEntry, 0, len(s.entries))
	for day, iv := range s.entries {
		out = append(out, DayEntry{Date: day, Interval: iv})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Len returns the number of entries.
func (s *DaySchedule) Len() int {
	return len(s.entries)
}

// Clear removes every entry and returns how many were discarded. The range is kept.
func (s *DaySchedule) Clear() int {
	n := len(s.entries)
	s.entries = make(map[Date]Interval)
	return n
}

// Clone returns an independent copy.
func (s *DaySchedule) Clone() *DaySchedule {
	out := NewDaySchedule()
	out.start, out.end = s.start, s.end
	for day, iv := range s.entries {
		out.entries[day] = iv
	}
	return out
}

// Equal reports whether both tables hold the same range and entries.
func (s *DaySchedule) Equal(other *DaySchedule) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.start != other.start || s.end != other.end || len(s.entries) != len(other.entries) {
		return false
	}
	for day, iv := range s.entries {
		if got, ok := other.entries[day]; !ok || got != iv {
			return false
		}
	}
	return true
}

func (s *DaySchedule) ensure() {
	if s.entries == nil {
		s.entries = make(map[Date]Interval)
	}
}

// DefaultsFrom returns the interval new days should receive: the uniform times when
// both are well formed, DefaultInterval otherwise.
func DefaultsFrom(uniformStart, uniformEnd string) Interval {
	if ValidClock(uniformStart) && ValidClock(uniformEnd) {
		return Interval{Start: uniformStart, End: uniformEnd}
	}
	return DefaultInterval
}

func sortDates(days []Date) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}
