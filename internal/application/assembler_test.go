package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/schedule"
)

type remoteImagesStub struct {
	part  eventapi.ImagePart
	err   error
	calls []string
}

func (s *remoteImagesStub) FetchImage(ctx context.Context, ref string) (eventapi.ImagePart, error) {
	s.calls = append(s.calls, ref)
	if s.err != nil {
		return eventapi.ImagePart{}, s.err
	}
	return s.part, nil
}

type previewReaderStub struct {
	data []byte
	meta media.Preview
	err  error
}

func (s *previewReaderStub) Read(handle string) ([]byte, media.Preview, error) {
	if s.err != nil {
		return nil, media.Preview{}, s.err
	}
	return s.data, s.meta, nil
}

func TestAssemble_UniformDraft(t *testing.T) {
	t.Parallel()

	remote := &remoteImagesStub{part: eventapi.ImagePart{Filename: "rmf.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}}
	a := NewAssembler(remote, nil)

	d := validDraft(schedule.MustParseDate("2025-06-10"))
	d.Hashtags = "Festival, #Sarawak ,culture"
	d.TargetAudience = []string{" Local", "Local", "Tourist "}

	payload, err := a.Assemble(context.Background(), d)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if payload.EventHashtags != "#Festival, #Sarawak, #culture" {
		t.Fatalf("unexpected hashtags %q", payload.EventHashtags)
	}
	if payload.StartTime != "10:00" || payload.EndTime != "18:00" {
		t.Fatalf("unexpected times %s-%s", payload.StartTime, payload.EndTime)
	}
	if payload.StartDate != "2025-06-10" || payload.EndDate != "2025-06-10" {
		t.Fatalf("unexpected dates %s..%s", payload.StartDate, payload.EndDate)
	}
	if payload.DailySchedule != nil {
		t.Fatalf("uniform drafts must not send a daily schedule")
	}
	if len(payload.TargetAudience) != 2 {
		t.Fatalf("expected normalized audience, got %v", payload.TargetAudience)
	}
	if payload.Latitude != 1.5533 || payload.Longitude != 110.3592 {
		t.Fatalf("unexpected coordinates %v,%v", payload.Latitude, payload.Longitude)
	}
	if payload.Image == nil || payload.Image.Filename != "rmf.jpg" {
		t.Fatalf("expected reused image to be attached, got %+v", payload.Image)
	}
	if len(remote.calls) != 1 || remote.calls[0] != "uploads/rmf.jpg" {
		t.Fatalf("unexpected fetches %v", remote.calls)
	}
}

func TestAssemble_AdvancedDraftSendsBothForms(t *testing.T) {
	t.Parallel()

	d := validDraft(schedule.MustParseDate("2025-06-01"))
	d.SetDates(schedule.MustParseDate("2025-06-01"), schedule.MustParseDate("2025-06-03"))
	d.UniformStart, d.UniformEnd = "", ""
	if _, err := d.SwitchMode(schedule.ModeAdvanced); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if err := d.SetDayTimes(schedule.MustParseDate("2025-06-02"), "11:00", "15:00"); err != nil {
		t.Fatalf("SetDayTimes: %v", err)
	}
	d.Image = ImageSource{Upload: uploadPreview("h1", 3)}

	previews := &previewReaderStub{data: []byte("png"), meta: media.Preview{Filename: "poster.png", ContentType: "image/png"}}
	payload, err := NewAssembler(nil, previews).Assemble(context.Background(), d)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(payload.DailySchedule) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(payload.DailySchedule))
	}
	if payload.DailySchedule[0].Date != "2025-06-01T00:00:00.000Z" {
		t.Fatalf("unexpected wire date %q", payload.DailySchedule[0].Date)
	}
	if s := payload.DailySchedule[1]; s.StartTime != "11:00" || s.EndTime != "15:00" {
		t.Fatalf("unexpected middle slot %+v", s)
	}
	if payload.StartTime != "09:00" || payload.EndTime != "17:00" {
		t.Fatalf("uniform fields should fall back to the first day, got %s-%s", payload.StartTime, payload.EndTime)
	}
	if payload.Image == nil || string(payload.Image.Data) != "png" {
		t.Fatalf("expected upload bytes, got %+v", payload.Image)
	}
}

func TestAssemble_UpdateKeepingImageSendsNoPart(t *testing.T) {
	t.Parallel()

	remote := &remoteImagesStub{}
	d := validDraft(schedule.MustParseDate("2025-06-10"))
	d.Action = ActionUpdate
	d.SourceEventID = "event-1"
	d.Image = ImageSource{Existing: "uploads/rmf.jpg"}

	payload, err := NewAssembler(remote, nil).Assemble(context.Background(), d)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if payload.Image != nil || len(remote.calls) != 0 {
		t.Fatalf("expected no image part and no fetch, got %+v / %v", payload.Image, remote.calls)
	}
}

func TestAssemble_ImageFailures(t *testing.T) {
	t.Parallel()

	d := validDraft(schedule.MustParseDate("2025-06-10"))
	_, err := NewAssembler(&remoteImagesStub{err: errors.New("timeout")}, nil).Assemble(context.Background(), d)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError for a failed fetch, got %v", err)
	}

	d.Image = ImageSource{Upload: uploadPreview("gone", 3)}
	_, err = NewAssembler(nil, &previewReaderStub{err: media.ErrUnknownHandle}).Assemble(context.Background(), d)
	if !errors.Is(err, media.ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestParseWireDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2024-01-01", "2024-01-01T00:00:00.000Z", " 2024-01-01T16:00:00+08:00 "} {
		got, err := parseWireDate(in)
		if err != nil || got != schedule.MustParseDate("2024-01-01") {
			t.Fatalf("parseWireDate(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseWireDate("Jan 1"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
