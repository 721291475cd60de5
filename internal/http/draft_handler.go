package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/schedule"
)

// DefaultMaxUploadBytes caps the multipart body accepted by the image endpoint.
const DefaultMaxUploadBytes = 8 << 20

// maxJSONBodyBytes caps the JSON bodies of the draft edit endpoints.
const maxJSONBodyBytes = 64 << 10

type draftService interface {
	NewDraft(ctx context.Context) (application.Draft, error)
	GetDraft(ctx context.Context, id string) (application.Draft, error)
	ListDrafts(ctx context.Context) ([]application.Draft, error)
	UpdateDraft(ctx context.Context, id string, patch application.DraftPatch) (application.Draft, error)
	SwitchMode(ctx context.Context, id string, mode schedule.Mode) (application.Draft, schedule.SwitchResult, error)
	SetDayTimes(ctx context.Context, id string, day schedule.Date, start, end string) (application.Draft, error)
	AttachImage(ctx context.Context, id, filename string, r io.Reader) (application.Draft, error)
	RemoveImage(ctx context.Context, id string) (application.Draft, error)
	Validate(ctx context.Context, id string) (*application.ValidationError, error)
	Submit(ctx context.Context, id string) (application.SubmitResult, error)
	Discard(ctx context.Context, id string) error
	ExportCalendar(ctx context.Context, id string) ([]byte, error)
}

// DraftHandler serves the draft authoring endpoints.
type DraftHandler struct {
	service        draftService
	responder      responder
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewDraftHandler builds a handler. maxUploadBytes <= 0 uses DefaultMaxUploadBytes.
func NewDraftHandler(service draftService, maxUploadBytes int64, logger *slog.Logger) *DraftHandler {
	base := defaultLogger(logger)
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &DraftHandler{service: service, responder: newResponder(base), logger: base, maxUploadBytes: maxUploadBytes}
}

func (h *DraftHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DraftHandler", operation, attrs...)
}

func (h *DraftHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *DraftHandler) draftID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := DraftIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing draft id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDraftID)
		return "", false
	}
	return id, true
}

// decodeBody reads a size-limited JSON body into v and writes the error response on failure.
func (h *DraftHandler) decodeBody(w http.ResponseWriter, r *http.Request, operation, id string, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.log(r.Context(), operation, "draft_id", id, "error_kind", "too_large").WarnContext(r.Context(), "request body too large", "limit", tooLarge.Limit)
		h.responder.writeJSON(r.Context(), w, http.StatusRequestEntityTooLarge, errorResponse{ErrorCode: "BODY_TOO_LARGE", Message: "The request body is too large."})
		return false
	}
	h.log(r.Context(), operation, "draft_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode request body", "error", err)
	h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
	return false
}

// Create starts an empty draft.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	d, err := h.service.NewDraft(r.Context())
	if err != nil {
		h.log(r.Context(), "Create").ErrorContext(r.Context(), "draft creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "Create", "draft_id", d.ID).InfoContext(r.Context(), "draft created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, draftResponse{Draft: toDraftDTO(d)})
}

// List returns every draft, most recently updated first.
func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	drafts, err := h.service.ListDrafts(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "draft list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	resp := draftsResponse{Drafts: make([]draftDTO, 0, len(drafts))}
	for _, d := range drafts {
		resp.Drafts = append(resp.Drafts, toDraftDTO(d))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Get returns one draft.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "Get")
	if !ok {
		return
	}
	d, err := h.service.GetDraft(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "draft_id", id).WarnContext(r.Context(), "draft lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, draftResponse{Draft: toDraftDTO(d)})
}

// Update applies a partial field edit.
func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "Update")
	if !ok {
		return
	}

	var req draftPatchRequest
	if !h.decodeBody(w, r, "Update", id, &req) {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		h.log(r.Context(), "Update", "draft_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "invalid draft patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "draft_id", id)
	d, err := h.service.UpdateDraft(r.Context(), id, patch)
	if err != nil {
		logger.ErrorContext(r.Context(), "draft update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "draft updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, draftResponse{Draft: toDraftDTO(d)})
}

// SwitchMode changes the time mode.
func (h *DraftHandler) SwitchMode(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "SwitchMode")
	if !ok {
		return
	}

	var req modeRequest
	if !h.decodeBody(w, r, "SwitchMode", id, &req) {
		return
	}
	mode, err := schedule.ParseMode(req.Mode)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "SwitchMode", "draft_id", id, "mode", mode)
	d, result, err := h.service.SwitchMode(r.Context(), id, mode)
	if err != nil {
		logger.ErrorContext(r.Context(), "mode switch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "mode switched", "discarded_days", result.Discarded)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, modeResponse{
		Draft:         toDraftDTO(d),
		PopulatedDays: formatDates(result.Populated),
		DiscardedDays: result.Discarded,
	})
}

// SetDayTimes replaces the times of one day.
func (h *DraftHandler) SetDayTimes(w http.ResponseWriter, r *http.Request, rawDate string) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "SetDayTimes")
	if !ok {
		return
	}
	day, err := schedule.ParseDate(rawDate)
	if err != nil {
		h.log(r.Context(), "SetDayTimes", "draft_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "invalid day in path", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	var req dayTimesRequest
	if !h.decodeBody(w, r, "SetDayTimes", id, &req) {
		return
	}

	logger := h.log(r.Context(), "SetDayTimes", "draft_id", id, "date", day.String())
	d, err := h.service.SetDayTimes(r.Context(), id, day, req.StartTime, req.EndTime)
	if err != nil {
		logger.WarnContext(r.Context(), "day times rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, draftResponse{Draft: toDraftDTO(d)})
}

// AttachImage stores the multipart "image" field as the draft's new image.
func (h *DraftHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "AttachImage")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log(r.Context(), "AttachImage", "draft_id", id, "error_kind", "too_large").WarnContext(r.Context(), "upload too large", "limit", tooLarge.Limit)
			h.responder.writeJSON(r.Context(), w, http.StatusRequestEntityTooLarge, errorResponse{ErrorCode: "IMAGE_TOO_LARGE", Message: "The uploaded image is too large."})
			return
		}
		h.log(r.Context(), "AttachImage", "draft_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "missing image part", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingImage)
		return
	}
	defer file.Close()

	logger := h.log(r.Context(), "AttachImage", "draft_id", id, "filename", header.Filename)
	d, err := h.service.AttachImage(r.Context(), id, header.Filename, file)
	if err != nil {
		logger.ErrorContext(r.Context(), "image attach failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "image attached", "size", header.Size)
	if d.Image.Upload != nil && d.Image.Upload.Digest != "" {
		w.Header().Set("ETag", strconv.Quote(d.Image.Upload.Digest))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, draftResponse{Draft: toDraftDTO(d)})
}

// RemoveImage drops the uploaded image.
func (h *DraftHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "RemoveImage")
	if !ok {
		return
	}
	d, err := h.service.RemoveImage(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "RemoveImage", "draft_id", id).ErrorContext(r.Context(), "image removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, draftResponse{Draft: toDraftDTO(d)})
}

// Validate reports every problem without submitting.
func (h *DraftHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "Validate")
	if !ok {
		return
	}
	vErr, err := h.service.Validate(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Validate", "draft_id", id).ErrorContext(r.Context(), "validation failed to run", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	resp := validationResponse{Valid: !vErr.HasErrors(), Problems: []application.Problem{}}
	if vErr.HasErrors() {
		resp.Problems = vErr.Problems
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Submit sends the draft to the Event Service.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "Submit")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Submit", "draft_id", id)
	result, err := h.service.Submit(r.Context(), id)
	if err != nil {
		logger.WarnContext(r.Context(), "submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if result.Action == application.ActionCreate {
		status = http.StatusCreated
	}
	logger.InfoContext(r.Context(), "draft submitted", "action", result.Action, "event_id", result.Event.ID)
	h.responder.writeJSON(r.Context(), w, status, submitResponse{
		Action: string(result.Action),
		Event:  result.Event,
	})
}

// Discard deletes the draft.
func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "Discard")
	if !ok {
		return
	}
	logger := h.log(r.Context(), "Discard", "draft_id", id)
	if err := h.service.Discard(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "discard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "draft discarded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Calendar renders the draft as an iCalendar document.
func (h *DraftHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.draftID(w, r, "Calendar")
	if !ok {
		return
	}
	body, err := h.service.ExportCalendar(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Calendar", "draft_id", id).WarnContext(r.Context(), "calendar unavailable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log(r.Context(), "Calendar", "draft_id", id).ErrorContext(r.Context(), "failed to write calendar", "error", err)
	}
}

type draftPatchRequest struct {
	Name                 *string   `json:"name"`
	Description          *string   `json:"description"`
	EventType            *string   `json:"event_type"`
	Organizers           *string   `json:"organizers"`
	Hashtags             *string   `json:"hashtags"`
	StartDate            *string   `json:"start_date"`
	EndDate              *string   `json:"end_date"`
	StartTime            *string   `json:"start_time"`
	EndTime              *string   `json:"end_time"`
	Latitude             *string   `json:"latitude"`
	Longitude            *string   `json:"longitude"`
	TargetAudience       *[]string `json:"target_audience"`
	RegistrationRequired *string   `json:"registration_required"`
}

func (r draftPatchRequest) toPatch() (application.DraftPatch, error) {
	patch := application.DraftPatch{
		Name:           r.Name,
		Description:    r.Description,
		EventType:      r.EventType,
		Organizers:     r.Organizers,
		Hashtags:       r.Hashtags,
		UniformStart:   r.StartTime,
		UniformEnd:     r.EndTime,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		TargetAudience: r.TargetAudience,
	}
	if r.StartDate != nil {
		d, err := parseOptionalDate(*r.StartDate)
		if err != nil {
			return application.DraftPatch{}, err
		}
		patch.StartDate = &d
	}
	if r.EndDate != nil {
		d, err := parseOptionalDate(*r.EndDate)
		if err != nil {
			return application.DraftPatch{}, err
		}
		patch.EndDate = &d
	}
	if r.RegistrationRequired != nil {
		reg := application.Registration(strings.TrimSpace(*r.RegistrationRequired))
		patch.Registration = &reg
	}
	return patch, nil
}

// parseOptionalDate accepts "" as a cleared date.
func parseOptionalDate(value string) (schedule.Date, error) {
	if strings.TrimSpace(value) == "" {
		return schedule.Date{}, nil
	}
	d, err := schedule.ParseDate(value)
	if err != nil {
		return schedule.Date{}, errInvalidDate
	}
	return d, nil
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type dayTimesRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type draftDTO struct {
	ID                   string                  `json:"id"`
	Action               string                  `json:"action"`
	ActionLabel          string                  `json:"action_label"`
	SourceEventID        string                  `json:"source_event_id,omitempty"`
	TemplateEventID      string                  `json:"template_event_id,omitempty"`
	Name                 string                  `json:"name"`
	Description          string                  `json:"description"`
	EventType            string                  `json:"event_type"`
	Organizers           string                  `json:"organizers"`
	Hashtags             string                  `json:"hashtags"`
	StartDate            string                  `json:"start_date"`
	EndDate              string                  `json:"end_date"`
	TimeMode             string                  `json:"time_mode"`
	StartTime            string                  `json:"start_time"`
	EndTime              string                  `json:"end_time"`
	DailySchedule        []schedule.DayEntry     `json:"daily_schedule"`
	Latitude             string                  `json:"latitude"`
	Longitude            string                  `json:"longitude"`
	TargetAudience       []string                `json:"target_audience"`
	RegistrationRequired string                  `json:"registration_required"`
	Image                application.ImageSource `json:"image"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

func toDraftDTO(d application.Draft) draftDTO {
	dto := draftDTO{
		ID:                   d.ID,
		Action:               string(d.Action),
		ActionLabel:          d.Action.Label(),
		SourceEventID:        d.SourceEventID,
		TemplateEventID:      d.TemplateEventID,
		Name:                 d.Name,
		Description:          d.Description,
		EventType:            d.EventType,
		Organizers:           d.Organizers,
		Hashtags:             d.Hashtags,
		StartDate:            d.StartDate.String(),
		EndDate:              d.EndDate.String(),
		TimeMode:             string(d.Mode),
		StartTime:            d.UniformStart,
		EndTime:              d.UniformEnd,
		DailySchedule:        []schedule.DayEntry{},
		Latitude:             d.Latitude,
		Longitude:            d.Longitude,
		TargetAudience:       append([]string{}, d.TargetAudience...),
		RegistrationRequired: string(d.Registration),
		Image:                d.Image,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	if dto.TimeMode == "" {
		dto.TimeMode = string(schedule.ModeUniform)
	}
	if d.Days != nil {
		dto.DailySchedule = append(dto.DailySchedule, d.Days.Entries()...)
	}
	return dto
}

func formatDates(days []schedule.Date) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return out
}

type draftResponse struct {
	Draft draftDTO `json:"draft"`
}

type draftsResponse struct {
	Drafts []draftDTO `json:"drafts"`
}

type modeResponse struct {
	Draft         draftDTO `json:"draft"`
	PopulatedDays []string `json:"populated_days"`
	DiscardedDays int      `json:"discarded_days"`
}

type validationResponse struct {
	Valid    bool                  `json:"valid"`
	Problems []application.Problem `json:"problems"`
}

type submitResponse struct {
	Action string         `json:"action"`
	Event  eventapi.Event `json:"event"`
}
