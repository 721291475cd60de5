package testfixtures

import (
	"time"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/schedule"
)

var (
	eventIDs = NewIDGenerator("event")
	draftIDs = NewIDGenerator("draft-fixture")
)

// Kuching is the fixed UTC+8 zone events are organised in.
var Kuching = time.FixedZone("MYT", 8*60*60)

var referenceTime = time.Date(2025, time.June, 1, 8, 0, 0, 0, Kuching)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// 2025-06-01 08:00 in Kuching.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventOption configures the generated remote event.
type EventOption func(*eventapi.Event)

// NewEventFixture returns a deterministic single-day remote event on the reference date.
func NewEventFixture(opts ...EventOption) eventapi.Event {
	id := eventIDs.Next()
	day := referenceTime.Format(schedule.DateLayout)
	ev := eventapi.Event{
		ID:                   id,
		Name:                 "Showcase " + id,
		Description:          "Cultural showcase at the waterfront",
		EventType:            "Festival",
		EventOrganizers:      "Sarawak Tourism Board",
		EventHashtags:        "#Festival, #Sarawak",
		TargetAudience:       []string{"Local", "Tourist"},
		RegistrationRequired: eventapi.RegistrationNo,
		StartDate:            day + "T00:00:00.000Z",
		EndDate:              day + "T00:00:00.000Z",
		StartTime:            "10:00",
		EndTime:              "18:00",
		Latitude:             1.5533,
		Longitude:            110.3592,
		Image:                "uploads/" + id + ".jpg",
	}
	for _, opt := range opts {
		opt(&ev)
	}
	return ev
}

// WithEventID overrides the event identifier.
func WithEventID(id string) EventOption {
	return func(ev *eventapi.Event) { ev.ID = id }
}

// WithEventDates sets the wire start and end dates from YYYY-MM-DD values.
func WithEventDates(start, end string) EventOption {
	return func(ev *eventapi.Event) {
		ev.StartDate = start + "T00:00:00.000Z"
		ev.EndDate = end + "T00:00:00.000Z"
	}
}

// WithEventTimes sets the uniform wire times.
func WithEventTimes(start, end string) EventOption {
	return func(ev *eventapi.Event) {
		ev.StartTime = start
		ev.EndTime = end
	}
}

// WithEventDailySchedule sets the per-day slots.
func WithEventDailySchedule(slots ...eventapi.DaySlot) EventOption {
	return func(ev *eventapi.Event) { ev.DailySchedule = slots }
}

// WithEventImage overrides the stored image reference.
func WithEventImage(ref string) EventOption {
	return func(ev *eventapi.Event) { ev.Image = ref }
}

// ----------------------------- Draft fixtures -----------------------------

// DraftOption configures the generated draft.
type DraftOption func(*application.Draft)

// NewDraftFixture returns a create draft that passes validation at ReferenceTime: a
// single day one week ahead, 10:00 to 18:00, inside the Sarawak region, with an existing
// image reused from the Event Service.
func NewDraftFixture(opts ...DraftOption) application.Draft {
	id := draftIDs.Next()
	day := schedule.DateOf(referenceTime).AddDays(7)
	d := application.NewDraft(id, referenceTime)
	d.Name = "Recital " + id
	d.Description = "Evening of traditional music"
	d.EventType = "Music"
	d.Organizers = "Kuching Arts Council"
	d.Hashtags = "#Music, #Kuching"
	d.UniformStart, d.UniformEnd = "10:00", "18:00"
	d.Latitude, d.Longitude = "1.5533", "110.3592"
	d.TargetAudience = []string{"Local"}
	d.Registration = application.RegistrationNo
	d.Image = application.ImageSource{Existing: "uploads/template.jpg", Reuse: true}
	d.SetDates(day, day)
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithDraftID overrides the draft identifier.
func WithDraftID(id string) DraftOption {
	return func(d *application.Draft) { d.ID = id }
}

// WithDraftDates moves the draft's range, resynchronizing the per-day table.
func WithDraftDates(start, end string) DraftOption {
	return func(d *application.Draft) {
		d.SetDates(schedule.MustParseDate(start), schedule.MustParseDate(end))
	}
}

// WithUniformTimes sets the uniform start and end times.
func WithUniformTimes(start, end string) DraftOption {
	return func(d *application.Draft) {
		d.UniformStart, d.UniformEnd = start, end
	}
}

// WithAdvancedMode switches the draft to advanced mode, populating every day from the
// uniform times.
func WithAdvancedMode() DraftOption {
	return func(d *application.Draft) {
		if _, err := d.SwitchMode(schedule.ModeAdvanced); err != nil {
			panic(err)
		}
	}
}

// WithDayTimes sets one day of an advanced-mode draft.
func WithDayTimes(day, start, end string) DraftOption {
	return func(d *application.Draft) {
		if err := d.SetDayTimes(schedule.MustParseDate(day), start, end); err != nil {
			panic(err)
		}
	}
}

// WithCoordinates sets the latitude and longitude text.
func WithCoordinates(lat, lon string) DraftOption {
	return func(d *application.Draft) {
		d.Latitude, d.Longitude = lat, lon
	}
}

// WithImage overrides the draft's image source.
func WithImage(src application.ImageSource) DraftOption {
	return func(d *application.Draft) { d.Image = src }
}

// WithUpdateOf turns the draft into an update of the given event.
func WithUpdateOf(eventID string) DraftOption {
	return func(d *application.Draft) {
		d.Action = application.ActionUpdate
		d.SourceEventID = eventID
	}
}
