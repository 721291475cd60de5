package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/schedule"
)

// RemoteImages fetches images already stored by the Event Service.
type RemoteImages interface {
	FetchImage(ctx context.Context, ref string) (eventapi.ImagePart, error)
}

// PreviewReader reads locally attached images.
type PreviewReader interface {
	Read(handle string) ([]byte, media.Preview, error)
}

// Assembler turns validated drafts into Event Service payloads.
type Assembler struct {
	remote   RemoteImages
	previews PreviewReader
}

// NewAssembler wires the image sources used while assembling.
func NewAssembler(remote RemoteImages, previews PreviewReader) *Assembler {
	return &Assembler{remote: remote, previews: previews}
}

// Assemble builds the payload for d. The draft is expected to have passed ValidateDraft.
//
// Uniform start/end are always filled. Advanced drafts additionally carry one daily
// schedule slot per day of the range. A new upload is attached as-is; a reused remote
// image is downloaded and re-attached as binary; an update keeping its current image
// sends no image part.
func (a *Assembler) Assemble(ctx context.Context, d Draft) (eventapi.Payload, error) {
	lat, err := parseCoordinate(d.Latitude)
	if err != nil {
		return eventapi.Payload{}, fmt.Errorf("assemble: latitude: %w", err)
	}
	lon, err := parseCoordinate(d.Longitude)
	if err != nil {
		return eventapi.Payload{}, fmt.Errorf("assemble: longitude: %w", err)
	}

	startTime, endTime := d.EffectiveTimes()
	payload := eventapi.Payload{
		Name:                 strings.TrimSpace(d.Name),
		Description:          strings.TrimSpace(d.Description),
		EventType:            strings.TrimSpace(d.EventType),
		EventOrganizers:      strings.TrimSpace(d.Organizers),
		EventHashtags:        NormalizeHashtags(d.Hashtags),
		TargetAudience:       normalizeAudience(d.TargetAudience),
		RegistrationRequired: string(d.Registration),
		StartDate:            d.StartDate.String(),
		EndDate:              d.EndDate.String(),
		StartTime:            startTime,
		EndTime:              endTime,
		Latitude:             lat,
		Longitude:            lon,
	}

	if d.Mode == schedule.ModeAdvanced {
		slots, err := dailySlots(d)
		if err != nil {
			return eventapi.Payload{}, err
		}
		payload.DailySchedule = slots
	}

	image, err := a.imagePart(ctx, d)
	if err != nil {
		return eventapi.Payload{}, err
	}
	payload.Image = image
	return payload, nil
}

func dailySlots(d Draft) ([]eventapi.DaySlot, error) {
	days := schedule.EnumerateDays(d.StartDate, d.EndDate)
	slots := make([]eventapi.DaySlot, 0, len(days))
	for _, day := range days {
		iv, ok := d.Days.Entry(day)
		if !ok {
			return nil, fmt.Errorf("assemble: %w: no times for %s", schedule.ErrInvalidDate, day)
		}
		slots = append(slots, eventapi.DaySlot{
			Date:      wireDateTime(day),
			StartTime: iv.Start,
			EndTime:   iv.End,
		})
	}
	return slots, nil
}

func (a *Assembler) imagePart(ctx context.Context, d Draft) (*eventapi.ImagePart, error) {
	if upload := d.Image.Upload; upload != nil {
		if a.previews == nil {
			return nil, fmt.Errorf("assemble: no preview store configured")
		}
		data, meta, err := a.previews.Read(upload.Handle)
		if err != nil {
			return nil, fmt.Errorf("assemble: read upload: %w", err)
		}
		return &eventapi.ImagePart{Filename: meta.Filename, ContentType: meta.ContentType, Data: data}, nil
	}

	existing := strings.TrimSpace(d.Image.Existing)
	if existing == "" {
		return nil, nil
	}
	if !d.Image.Reuse && d.Action == ActionUpdate {
		return nil, nil
	}
	if a.remote == nil {
		return nil, fmt.Errorf("assemble: no image source configured")
	}
	part, err := a.remote.FetchImage(ctx, existing)
	if err != nil {
		return nil, &TransportError{Op: "fetch original image", Err: err}
	}
	return &part, nil
}

// wireDateTime renders a calendar day as the ISO date-time the Event Service expects.
func wireDateTime(day schedule.Date) string {
	return day.String() + "T00:00:00.000Z"
}

// parseWireDate accepts either YYYY-MM-DD or an ISO date-time and keeps the date part.
func parseWireDate(value string) (schedule.Date, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(schedule.DateLayout) {
		value = value[:len(schedule.DateLayout)]
	}
	return schedule.ParseDate(value)
}
