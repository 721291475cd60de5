package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses the strict HH:MM shape (two-digit hour 00-23, two-digit minute 00-59).
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	if len(value) != 5 || value[2] != ':' {
		return Clock{}, fmt.Errorf("schedule: time %q is not HH:MM", value)
	}
	hour, err := strconv.Atoi(value[:2])
	if err != nil || !isDigits(value[:2]) || hour > 23 {
		return Clock{}, fmt.Errorf("schedule: time %q has an invalid hour", value)
	}
	minute, err := strconv.Atoi(value[3:])
	if err != nil || !isDigits(value[3:]) || minute > 59 {
		return Clock{}, fmt.Errorf("schedule: time %q has an invalid minute", value)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// ValidClock reports whether value has the HH:MM shape.
func ValidClock(value string) bool {
	_, err := ParseClock(value)
	return err == nil
}

// ClockOf returns the wall-clock time of t, truncated to the minute.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is strictly earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
