package application

import (
	"strconv"
	"strings"
	"time"

	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/schedule"
)

// IsPastEvent reports whether ev's run ended before today. Events with an unreadable end
// date are not considered past.
func IsPastEvent(ev eventapi.Event, today schedule.Date) bool {
	end, err := parseWireDate(ev.EndDate)
	if err != nil {
		return false
	}
	return end.Before(today)
}

// DraftForEdit opens ev for editing. Events that already ended are never edited in place:
// the result is a reincarnated create draft instead (see Reincarnate).
func DraftForEdit(ev eventapi.Event, id string, now time.Time) Draft {
	if IsPastEvent(ev, schedule.DateOf(now)) {
		return Reincarnate(ev, id, now)
	}

	d := NewDraft(id, now)
	d.Action = ActionUpdate
	d.SourceEventID = ev.ID
	copyDescriptive(&d, ev)

	start, _ := parseWireDate(ev.StartDate)
	end, _ := parseWireDate(ev.EndDate)
	d.UniformStart = strings.TrimSpace(ev.StartTime)
	d.UniformEnd = strings.TrimSpace(ev.EndTime)
	d.StartDate, d.EndDate = start, end

	if len(ev.DailySchedule) > 0 {
		entries := make([]schedule.DayEntry, 0, len(ev.DailySchedule))
		for _, slot := range ev.DailySchedule {
			day, err := parseWireDate(slot.Date)
			if err != nil {
				continue
			}
			entries = append(entries, schedule.DayEntry{Date: day, Interval: schedule.Interval{Start: slot.StartTime, End: slot.EndTime}})
		}
		d.Mode = schedule.ModeAdvanced
		d.Days = schedule.RestoreDaySchedule(start, end, entries)
		// Fill days the service did not return so the table covers the whole range.
		if schedule.CheckTableRange(start, end) == nil {
			d.Days.Resync(start, end, schedule.DefaultsFrom(d.UniformStart, d.UniformEnd))
		}
	} else {
		d.Days.SetRange(start, end)
	}

	d.Image = ImageSource{Existing: strings.TrimSpace(ev.Image)}
	d.OriginalImage = d.Image.Existing
	return d
}

// Reincarnate builds a fresh create draft from a past event. Descriptive fields are copied,
// the dates reset to a single day today, times fall back to the original uniform times
// and the original image is marked for reuse. The past event itself is never modified.
func Reincarnate(ev eventapi.Event, id string, now time.Time) Draft {
	today := schedule.DateOf(now)

	d := NewDraft(id, now)
	d.Action = ActionCreate
	d.TemplateEventID = ev.ID
	copyDescriptive(&d, ev)

	d.UniformStart = strings.TrimSpace(ev.StartTime)
	d.UniformEnd = strings.TrimSpace(ev.EndTime)
	if (d.UniformStart == "" || d.UniformEnd == "") && len(ev.DailySchedule) > 0 {
		d.UniformStart = ev.DailySchedule[0].StartTime
		d.UniformEnd = ev.DailySchedule[0].EndTime
	}
	d.SetDates(today, today)

	if image := strings.TrimSpace(ev.Image); image != "" {
		d.Image = ImageSource{Existing: image, Reuse: true}
		d.OriginalImage = image
	}
	return d
}

func copyDescriptive(d *Draft, ev eventapi.Event) {
	d.Name = ev.Name
	d.Description = ev.Description
	d.EventType = ev.EventType
	d.Organizers = ev.EventOrganizers
	d.Hashtags = ev.EventHashtags
	d.TargetAudience = append([]string(nil), ev.TargetAudience...)
	d.Registration = Registration(ev.RegistrationRequired)
	d.Latitude = formatCoordinate(ev.Latitude)
	d.Longitude = formatCoordinate(ev.Longitude)
}

func formatCoordinate(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
