package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/ics"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/persistence"
	"github.com/example/event-admin/internal/schedule"
)

// EventService is the remote store of published events.
type EventService interface {
	ListEvents(ctx context.Context) ([]eventapi.Event, error)
	CreateEvent(ctx context.Context, payload eventapi.Payload) (eventapi.Event, error)
	UpdateEvent(ctx context.Context, id string, payload eventapi.Payload) (eventapi.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	FetchImage(ctx context.Context, ref string) (eventapi.ImagePart, error)
}

// DraftRepository persists drafts between requests.
type DraftRepository interface {
	SaveDraft(ctx context.Context, draft Draft) error
	GetDraft(ctx context.Context, id string) (Draft, error)
	ListDrafts(ctx context.Context) ([]Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// PreviewStore holds locally attached images.
type PreviewStore interface {
	PreviewReader
	Attach(filename string, r io.Reader) (media.Preview, error)
	Get(handle string) (media.Preview, error)
	Release(handle string) error
}

// DraftService drives the authoring workflow: drafts are mutated one operation at a time,
// validated, assembled and finally submitted to the Event Service.
type DraftService struct {
	events      EventService
	drafts      DraftRepository
	previews    PreviewStore
	assembler   *Assembler
	rules       ValidationRules
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewDraftService wires dependencies for draft operations.
func NewDraftService(events EventService, drafts DraftRepository, previews PreviewStore, rules ValidationRules, idGenerator func() string, now func() time.Time) *DraftService {
	return NewDraftServiceWithLogger(events, drafts, previews, rules, idGenerator, now, nil)
}

// NewDraftServiceWithLogger wires dependencies and a logger for draft operations.
func NewDraftServiceWithLogger(events EventService, drafts DraftRepository, previews PreviewStore, rules ValidationRules, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DraftService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if rules.MaxImageBytes <= 0 {
		rules.MaxImageBytes = DefaultMaxImageBytes
	}
	var remote RemoteImages
	if events != nil {
		remote = events
	}
	var reader PreviewReader
	if previews != nil {
		reader = previews
	}
	return &DraftService{
		events:      events,
		drafts:      drafts,
		previews:    previews,
		assembler:   NewAssembler(remote, reader),
		rules:       rules,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		inFlight:    make(map[string]struct{}),
	}
}

// NewDraft starts an empty create draft.
func (s *DraftService) NewDraft(ctx context.Context) (Draft, error) {
	if s == nil || s.drafts == nil {
		return Draft{}, fmt.Errorf("DraftService is not configured")
	}
	d := NewDraft(s.idGenerator(), s.now())
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return Draft{}, fmt.Errorf("save draft: %w", err)
	}
	serviceLogger(ctx, s.logger, "DraftService", "NewDraft", "draft_id", d.ID).InfoContext(ctx, "draft created")
	return d, nil
}

// EditEvent opens a draft for an existing event. When the event already ended the draft is
// a reincarnation: it will create a new event and leave the original untouched.
func (s *DraftService) EditEvent(ctx context.Context, eventID string) (Draft, error) {
	if s == nil || s.drafts == nil || s.events == nil {
		return Draft{}, fmt.Errorf("DraftService is not configured")
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return Draft{}, &TransportError{Op: "list events", Err: err}
	}
	idx := -1
	for i := range events {
		if events[i].ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Draft{}, ErrNotFound
	}

	d := DraftForEdit(events[idx], s.idGenerator(), s.now())
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return Draft{}, fmt.Errorf("save draft: %w", err)
	}
	serviceLogger(ctx, s.logger, "DraftService", "EditEvent",
		"draft_id", d.ID, "event_id", eventID, "action", d.Action).InfoContext(ctx, "edit draft opened")
	return d, nil
}

// GetDraft returns a draft by id.
func (s *DraftService) GetDraft(ctx context.Context, id string) (Draft, error) {
	if s == nil || s.drafts == nil {
		return Draft{}, fmt.Errorf("DraftService is not configured")
	}
	d, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return Draft{}, mapDraftRepoError(err)
	}
	return d, nil
}

// ListDrafts returns all drafts, most recently updated first.
func (s *DraftService) ListDrafts(ctx context.Context) ([]Draft, error) {
	if s == nil || s.drafts == nil {
		return nil, fmt.Errorf("DraftService is not configured")
	}
	drafts, err := s.drafts.ListDrafts(ctx)
	if err != nil {
		return nil, mapDraftRepoError(err)
	}
	sort.SliceStable(drafts, func(i, j int) bool {
		if drafts[i].UpdatedAt.Equal(drafts[j].UpdatedAt) {
			return drafts[i].ID < drafts[j].ID
		}
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
	return drafts, nil
}

// UpdateDraft applies a field patch. Changing either date resynchronizes the per-day table.
func (s *DraftService) UpdateDraft(ctx context.Context, id string, patch DraftPatch) (Draft, error) {
	var resync schedule.ResyncResult
	d, err := s.mutate(ctx, id, func(d *Draft) error {
		if d.Mode == schedule.ModeAdvanced {
			if err := schedule.CheckTableRange(patch.Dates(*d)); err != nil {
				return err
			}
		}
		resync = patch.Apply(d)
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	if resync.Changed() {
		serviceLogger(ctx, s.logger, "DraftService", "UpdateDraft", "draft_id", id).DebugContext(ctx,
			"per-day schedule resynchronized", "added", len(resync.Added), "removed", len(resync.Removed))
	}
	return d, nil
}

// SwitchMode changes the draft's time mode. Switching to uniform permanently discards the
// per-day times; the result reports how many days were dropped.
func (s *DraftService) SwitchMode(ctx context.Context, id string, mode schedule.Mode) (Draft, schedule.SwitchResult, error) {
	var result schedule.SwitchResult
	d, err := s.mutate(ctx, id, func(d *Draft) error {
		r, err := d.SwitchMode(mode)
		result = r
		return err
	})
	if err != nil {
		return Draft{}, schedule.SwitchResult{}, err
	}
	if result.Discarded > 0 {
		serviceLogger(ctx, s.logger, "DraftService", "SwitchMode", "draft_id", id).InfoContext(ctx,
			"per-day times discarded", "days", result.Discarded)
	}
	return d, result, nil
}

// SetDayTimes replaces one day's times on an advanced-mode draft.
func (s *DraftService) SetDayTimes(ctx context.Context, id string, day schedule.Date, start, end string) (Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		return d.SetDayTimes(day, start, end)
	})
}

// AttachImage stores a new upload for the draft. Any previous upload is released.
func (s *DraftService) AttachImage(ctx context.Context, id, filename string, r io.Reader) (Draft, error) {
	if s == nil || s.previews == nil {
		return Draft{}, fmt.Errorf("DraftService is not configured")
	}
	preview, err := s.previews.Attach(filename, r)
	if err != nil {
		return Draft{}, fmt.Errorf("attach image: %w", err)
	}

	var superseded string
	d, err := s.mutate(ctx, id, func(d *Draft) error {
		if current := d.Image.Upload; current != nil {
			if s.sameUpload(*current, preview) {
				superseded = preview.Handle
				return nil
			}
			superseded = current.Handle
		}
		upload := preview
		d.Image = ImageSource{Upload: &upload}
		return nil
	})
	if err != nil {
		s.release(ctx, preview.Handle)
		return Draft{}, err
	}
	if superseded == preview.Handle {
		serviceLogger(ctx, s.logger, "DraftService", "AttachImage", "draft_id", id).DebugContext(ctx,
			"image unchanged, keeping current preview", "digest", preview.Digest)
	}
	s.release(ctx, superseded)
	return d, nil
}

// sameUpload reports whether next has the same content as current and current is still held.
func (s *DraftService) sameUpload(current, next media.Preview) bool {
	if current.Digest == "" || current.Digest != next.Digest {
		return false
	}
	_, err := s.previews.Get(current.Handle)
	return err == nil
}

// RemoveImage drops a new upload and falls back to the draft's original image, if any.
func (s *DraftService) RemoveImage(ctx context.Context, id string) (Draft, error) {
	var released string
	d, err := s.mutate(ctx, id, func(d *Draft) error {
		if d.Image.Upload != nil {
			released = d.Image.Upload.Handle
		}
		d.Image = ImageSource{}
		if d.OriginalImage != "" {
			d.Image = ImageSource{Existing: d.OriginalImage, Reuse: d.TemplateEventID != ""}
		}
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	s.release(ctx, released)
	return d, nil
}

// Validate runs every rule against the draft at the current time.
func (s *DraftService) Validate(ctx context.Context, id string) (*ValidationError, error) {
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return ValidateDraft(d, s.now(), s.rules), nil
}

// Submit validates the draft, assembles its payload and sends it to the Event Service.
//
// Start times are checked against the clock twice: during validation and again right
// before dispatch, since time passes while the payload is assembled. A late failure is
// reported as *StaleTimeError. Transport failures leave the draft as it was. Only one
// submission per draft may be in flight.
func (s *DraftService) Submit(ctx context.Context, id string) (SubmitResult, error) {
	if s == nil || s.drafts == nil || s.events == nil {
		return SubmitResult{}, fmt.Errorf("DraftService is not configured")
	}
	logger := serviceLogger(ctx, s.logger, "DraftService", "Submit", "draft_id", id)

	d, err := s.beginSubmit(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	defer s.endSubmit(id)

	if vErr := ValidateDraft(d, s.now(), s.rules); vErr != nil {
		logger.InfoContext(ctx, "draft rejected", "error_kind", ErrorKind(vErr), "problems", len(vErr.Problems))
		return SubmitResult{}, vErr
	}

	payload, err := s.assembler.Assemble(ctx, d)
	if err != nil {
		logger.ErrorContext(ctx, "assemble failed", "error_kind", ErrorKind(err), "error", err)
		return SubmitResult{}, err
	}

	if late := CheckNotInPast(d, s.now()); late != nil {
		stale := &StaleTimeError{Validation: late}
		logger.InfoContext(ctx, "draft went stale before dispatch", "error_kind", ErrorKind(stale))
		return SubmitResult{}, stale
	}

	var event eventapi.Event
	switch d.Action {
	case ActionUpdate:
		event, err = s.events.UpdateEvent(ctx, d.SourceEventID, payload)
		if err != nil {
			err = &TransportError{Op: "update event", Err: err}
		}
	default:
		event, err = s.events.CreateEvent(ctx, payload)
		if err != nil {
			err = &TransportError{Op: "create event", Err: err}
		}
	}
	if err != nil {
		logger.ErrorContext(ctx, "submission failed", "error_kind", ErrorKind(err), "error", err)
		return SubmitResult{}, err
	}

	if d.Image.Upload != nil {
		s.release(ctx, d.Image.Upload.Handle)
	}
	if err := s.drafts.DeleteDraft(ctx, id); err != nil && !isNotFoundError(err) {
		logger.ErrorContext(ctx, "failed to delete submitted draft", "error", err)
	}
	logger.InfoContext(ctx, "draft submitted", "action", d.Action, "event_id", event.ID)
	return SubmitResult{Action: d.Action, Event: event}, nil
}

// Discard deletes the draft and releases its preview.
func (s *DraftService) Discard(ctx context.Context, id string) error {
	if s == nil || s.drafts == nil {
		return fmt.Errorf("DraftService is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return ErrSubmitInProgress
	}
	d, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return mapDraftRepoError(err)
	}
	if err := s.drafts.DeleteDraft(ctx, id); err != nil {
		return mapDraftRepoError(err)
	}
	if d.Image.Upload != nil {
		s.release(ctx, d.Image.Upload.Handle)
	}
	serviceLogger(ctx, s.logger, "DraftService", "Discard", "draft_id", id).InfoContext(ctx, "draft discarded")
	return nil
}

// ListEvents returns the published events.
func (s *DraftService) ListEvents(ctx context.Context) ([]eventapi.Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("DraftService is not configured")
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, &TransportError{Op: "list events", Err: err}
	}
	return events, nil
}

// DeleteEvent removes a published event.
func (s *DraftService) DeleteEvent(ctx context.Context, id string) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("DraftService is not configured")
	}
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, eventapi.ErrEventNotFound) {
			return ErrNotFound
		}
		return &TransportError{Op: "delete event", Err: err}
	}
	serviceLogger(ctx, s.logger, "DraftService", "DeleteEvent", "event_id", id).InfoContext(ctx, "event deleted")
	return nil
}

// ExportCalendar renders the draft's effective schedule as iCalendar.
func (s *DraftService) ExportCalendar(ctx context.Context, id string) ([]byte, error) {
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	cal, err := CalendarFor(d, now.Location())
	if err != nil {
		return nil, err
	}
	return ics.Export(cal, now)
}

func (s *DraftService) mutate(ctx context.Context, id string, fn func(d *Draft) error) (Draft, error) {
	if s == nil || s.drafts == nil {
		return Draft{}, fmt.Errorf("DraftService is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[id]; busy {
		return Draft{}, ErrSubmitInProgress
	}
	d, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return Draft{}, mapDraftRepoError(err)
	}
	if err := fn(&d); err != nil {
		return Draft{}, err
	}
	d.UpdatedAt = s.now()
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

func (s *DraftService) beginSubmit(ctx context.Context, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return Draft{}, ErrSubmitInProgress
	}
	d, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return Draft{}, mapDraftRepoError(err)
	}
	s.inFlight[id] = struct{}{}
	return d, nil
}

func (s *DraftService) endSubmit(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *DraftService) release(ctx context.Context, handle string) {
	if handle == "" || s.previews == nil {
		return
	}
	if err := s.previews.Release(handle); err != nil {
		serviceLogger(ctx, s.logger, "DraftService", "release", "handle", handle).WarnContext(ctx, "failed to release preview", "error", err)
	}
}

func mapDraftRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		return ErrNotFound
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
