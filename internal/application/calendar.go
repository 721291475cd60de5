package application

import (
	"fmt"
	"time"

	"github.com/example/event-admin/internal/ics"
	"github.com/example/event-admin/internal/schedule"
)

// CalendarFor converts a draft into its iCalendar form: one occurrence spanning the whole
// range in uniform mode, one per day in advanced mode.
func CalendarFor(d Draft, loc *time.Location) (ics.Calendar, error) {
	cal := ics.Calendar{
		UID:         d.ID,
		Summary:     d.Name,
		Description: d.Description,
		Categories:  HashtagList(d.Hashtags),
	}
	if d.Latitude != "" && d.Longitude != "" {
		cal.Location = d.Latitude + "," + d.Longitude
	}

	switch d.Mode {
	case schedule.ModeAdvanced:
		for _, day := range schedule.EnumerateDays(d.StartDate, d.EndDate) {
			iv, ok := d.Days.Entry(day)
			if !ok {
				return ics.Calendar{}, fmt.Errorf("%w: %w: no times for %s", ErrScheduleIncomplete, schedule.ErrInvalidDate, day)
			}
			occ, err := occurrence(day, day, iv.Start, iv.End, loc)
			if err != nil {
				return ics.Calendar{}, err
			}
			cal.Occurrences = append(cal.Occurrences, occ)
		}
	default:
		if d.StartDate.IsZero() || d.EndDate.IsZero() {
			return ics.Calendar{}, fmt.Errorf("%w: event dates are not set", ErrScheduleIncomplete)
		}
		occ, err := occurrence(d.StartDate, d.EndDate, d.UniformStart, d.UniformEnd, loc)
		if err != nil {
			return ics.Calendar{}, err
		}
		cal.Occurrences = append(cal.Occurrences, occ)
	}
	return cal, nil
}

func occurrence(startDay, endDay schedule.Date, start, end string, loc *time.Location) (ics.Occurrence, error) {
	s, err := schedule.ParseClock(start)
	if err != nil {
		return ics.Occurrence{}, fmt.Errorf("%w: %w", ErrScheduleIncomplete, err)
	}
	e, err := schedule.ParseClock(end)
	if err != nil {
		return ics.Occurrence{}, fmt.Errorf("%w: %w", ErrScheduleIncomplete, err)
	}
	return ics.Occurrence{Start: startDay.At(s, loc), End: endDay.At(e, loc)}, nil
}
