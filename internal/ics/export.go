// Package ics renders an event's effective schedule as an iCalendar document.
package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//event-admin//schedule export//EN"

// Occurrence is one concrete run of an event.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Calendar is the event data needed for export.
type Calendar struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Categories  []string
	Occurrences []Occurrence
}

// Export renders c with one VEVENT per occurrence. Occurrence UIDs are derived from c.UID
// so re-imports update rather than duplicate.
func Export(c Calendar, stamp time.Time) ([]byte, error) {
	if strings.TrimSpace(c.UID) == "" {
		return nil, errors.New("ics: calendar uid is required")
	}
	if len(c.Occurrences) == 0 {
		return nil, errors.New("ics: nothing to export")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for i, occ := range c.Occurrences {
		if !occ.End.After(occ.Start) {
			return nil, fmt.Errorf("ics: occurrence %d ends before it starts", i)
		}
		uid := c.UID
		if len(c.Occurrences) > 1 {
			uid = fmt.Sprintf("%s-%s", c.UID, occ.Start.Format("20060102"))
		}
		event := cal.AddEvent(uid)
		event.SetDtStampTime(stamp)
		event.SetStartAt(occ.Start)
		event.SetEndAt(occ.End)
		event.SetSummary(c.Summary)
		if c.Description != "" {
			event.SetDescription(c.Description)
		}
		if c.Location != "" {
			event.SetLocation(c.Location)
		}
		if len(c.Categories) > 0 {
			event.SetProperty(ical.ComponentPropertyCategories, strings.Join(c.Categories, ","))
		}
	}

	return []byte(cal.Serialize()), nil
}
