package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/schedule"
)

var (
	errBadRequestBody = errors.New("request body is malformed")
	errInvalidDraftID = errors.New("draft id is required")
	errInvalidEventID = errors.New("event id is required")
	errInvalidDate    = errors.New("date must be YYYY-MM-DD")
	errMissingImage   = errors.New(`multipart field "image" is required`)
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		stale *application.StaleTimeError
		vErr  *application.ValidationError
		tErr  *application.TransportError
	)
	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "The requested resource was not found."})
	case errors.Is(err, application.ErrSubmitInProgress):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "SUBMIT_IN_PROGRESS", Message: "This draft is being submitted. Try again once the submission finishes."})
	case errors.Is(err, application.ErrUniformMode):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "UNIFORM_MODE", Message: "Per-day times can only be edited in advanced mode."})
	case errors.Is(err, application.ErrScheduleIncomplete):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "SCHEDULE_INCOMPLETE", Message: "The event dates and times must be complete before they can be exported."})
	case errors.Is(err, schedule.ErrInvalidDate):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "INVALID_DATE", Message: "The date is outside the event dates."})
	case errors.Is(err, schedule.ErrRangeTooLong):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "RANGE_TOO_LONG",
			Message:   fmt.Sprintf("Per-day times can cover at most %d days.", schedule.MaxTableDays),
		})
	case errors.Is(err, media.ErrTooLarge):
		r.writeJSON(ctx, w, http.StatusRequestEntityTooLarge, errorResponse{ErrorCode: "IMAGE_TOO_LARGE", Message: "The uploaded image is too large."})
	case errors.As(err, &stale):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "STALE_TIME",
			Message:   "A start time passed while the event was being submitted. Choose a later time.",
			Problems:  problemsOf(stale.Validation),
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "The event has validation problems.",
			Errors:    vErr.FieldErrors(),
			Problems:  problemsOf(vErr),
		})
	case errors.As(err, &tErr):
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{ErrorCode: "EVENT_SERVICE_FAILED", Message: tErr.RemoteMessage()})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal error occurred."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func problemsOf(vErr *application.ValidationError) []application.Problem {
	if vErr == nil {
		return nil
	}
	return vErr.Problems
}

type errorResponse struct {
	ErrorCode string                `json:"error_code,omitempty"`
	Message   string                `json:"message"`
	Errors    map[string]string     `json:"errors,omitempty"`
	Problems  []application.Problem `json:"problems,omitempty"`
}
