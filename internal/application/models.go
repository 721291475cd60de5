package application

import (
	"strings"
	"time"

	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/schedule"
)

// Action is what submitting a draft will do on the Event Service.
type Action string

const (
	// ActionCreate submits the draft as a new event.
	ActionCreate Action = "create"
	// ActionUpdate submits the draft as changes to its source event.
	ActionUpdate Action = "update"
)

// Label returns the caption a front end shows on the submit control.
func (a Action) Label() string {
	if a == ActionUpdate {
		return "Save changes"
	}
	return "Create new event"
}

// Registration is the registration-required choice of a draft.
type Registration string

const (
	// RegistrationUnset means the author has not chosen yet.
	RegistrationUnset Registration = ""
	// RegistrationYes requires attendees to register.
	RegistrationYes Registration = eventapi.RegistrationYes
	// RegistrationNo allows walk-in attendance.
	RegistrationNo Registration = eventapi.RegistrationNo
)

// Valid reports whether r is one of the two accepted values.
func (r Registration) Valid() bool {
	return r == RegistrationYes || r == RegistrationNo
}

// ImageSource says where the draft's image comes from. Exactly one of Existing and
// Upload must be set for a draft to be valid.
type ImageSource struct {
	// Existing references an image already stored by the Event Service.
	Existing string `json:"existing,omitempty"`
	// Reuse asks the assembler to fetch Existing and send it as a new binary part.
	Reuse bool `json:"reuse,omitempty"`
	// Upload is a locally attached image waiting to be sent.
	Upload *media.Preview `json:"upload,omitempty"`
}

// Draft is an in-progress event. It may be invalid at any time before submission.
type Draft struct {
	ID string
	// SourceEventID is the event an update draft modifies. Empty for create drafts.
	SourceEventID string
	// TemplateEventID is the past event a reincarnated draft was copied from.
	TemplateEventID string
	Action          Action

	Name        string
	Description string
	EventType   string
	Organizers  string
	Hashtags    string

	StartDate    schedule.Date
	EndDate      schedule.Date
	Mode         schedule.Mode
	UniformStart string
	UniformEnd   string
	Days         *schedule.DaySchedule

	Latitude  string
	Longitude string

	TargetAudience []string
	Registration   Registration

	Image ImageSource
	// OriginalImage is the image the draft started with, restored when an upload is removed.
	OriginalImage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDraft returns an empty create draft in uniform mode.
func NewDraft(id string, now time.Time) Draft {
	return Draft{
		ID:        id,
		Action:    ActionCreate,
		Mode:      schedule.ModeUniform,
		Days:      schedule.NewDaySchedule(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the per-day table.
func (d Draft) Clone() Draft {
	out := d
	if d.Days != nil {
		out.Days = d.Days.Clone()
	} else {
		out.Days = schedule.NewDaySchedule()
	}
	if d.TargetAudience != nil {
		out.TargetAudience = append([]string(nil), d.TargetAudience...)
	}
	if d.Image.Upload != nil {
		upload := *d.Image.Upload
		out.Image.Upload = &upload
	}
	return out
}

// SetDates moves the date range and resynchronizes the per-day table when in advanced mode.
// In uniform mode the table stays empty and only records the new range.
func (d *Draft) SetDates(start, end schedule.Date) schedule.ResyncResult {
	d.ensureDays()
	d.StartDate, d.EndDate = start, end
	if d.Mode == schedule.ModeAdvanced {
		return d.Days.Resync(start, end, d.defaultInterval())
	}
	d.Days.SetRange(start, end)
	return schedule.ResyncResult{}
}

// SwitchMode changes the time mode. Switching to uniform discards every per-day entry.
func (d *Draft) SwitchMode(to schedule.Mode) (schedule.SwitchResult, error) {
	d.ensureDays()
	from := d.Mode
	if from == "" {
		from = schedule.ModeUniform
	}
	result, err := schedule.Switch(d.Days, from, to, d.StartDate, d.EndDate, d.defaultInterval())
	if err != nil {
		return schedule.SwitchResult{}, err
	}
	d.Mode = to
	return result, nil
}

// SetDayTimes replaces the interval of one day of an advanced-mode draft.
func (d *Draft) SetDayTimes(day schedule.Date, start, end string) error {
	if d.Mode != schedule.ModeAdvanced {
		return ErrUniformMode
	}
	d.ensureDays()
	return d.Days.SetEntry(day, strings.TrimSpace(start), strings.TrimSpace(end))
}

// EffectiveTimes returns the start and end times sent in the uniform wire fields. In
// advanced mode with no uniform times the first day's entry stands in.
func (d Draft) EffectiveTimes() (string, string) {
	start, end := d.UniformStart, d.UniformEnd
	if d.Mode == schedule.ModeAdvanced && d.Days != nil && (start == "" || end == "") {
		if entries := d.Days.Entries(); len(entries) > 0 {
			start, end = entries[0].Start, entries[0].End
		}
	}
	return start, end
}

func (d *Draft) defaultInterval() schedule.Interval {
	return schedule.DefaultsFrom(d.UniformStart, d.UniformEnd)
}

func (d *Draft) ensureDays() {
	if d.Days == nil {
		d.Days = schedule.NewDaySchedule()
	}
}

// DraftPatch carries field-by-field edits. Nil fields are left unchanged.
type DraftPatch struct {
	Name           *string
	Description    *string
	EventType      *string
	Organizers     *string
	Hashtags       *string
	StartDate      *schedule.Date
	EndDate        *schedule.Date
	UniformStart   *string
	UniformEnd     *string
	Latitude       *string
	Longitude      *string
	TargetAudience *[]string
	Registration   *Registration
}

// Apply writes the patch onto d. A date change triggers exactly one resync after all
// other fields are applied, so new days pick up patched uniform times.
func (p DraftPatch) Apply(d *Draft) schedule.ResyncResult {
	setString(&d.Name, p.Name)
	setString(&d.Description, p.Description)
	setString(&d.EventType, p.EventType)
	setString(&d.Organizers, p.Organizers)
	setString(&d.Hashtags, p.Hashtags)
	setString(&d.UniformStart, p.UniformStart)
	setString(&d.UniformEnd, p.UniformEnd)
	setString(&d.Latitude, p.Latitude)
	setString(&d.Longitude, p.Longitude)
	if p.TargetAudience != nil {
		d.TargetAudience = append([]string(nil), (*p.TargetAudience)...)
	}
	if p.Registration != nil {
		d.Registration = *p.Registration
	}

	if p.StartDate == nil && p.EndDate == nil {
		return schedule.ResyncResult{}
	}
	return d.SetDates(p.Dates(*d))
}

// Dates returns the range d would have after the patch.
func (p DraftPatch) Dates(d Draft) (schedule.Date, schedule.Date) {
	start, end := d.StartDate, d.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	return start, end
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	Action Action
	Event  eventapi.Event
}
