package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/eventapi"
)

type eventService interface {
	ListEvents(ctx context.Context) ([]eventapi.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	EditEvent(ctx context.Context, eventID string) (application.Draft, error)
}

// EventHandler serves the published-event endpoints.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if events == nil {
		events = []eventapi.Event{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventsResponse{Events: events})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Delete", "event_id", eventID)
	if err := h.service.DeleteEvent(r.Context(), eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Edit opens a draft for the event. Past events come back as create drafts.
func (h *EventHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.log(r.Context(), "Edit", "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id for edit")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Edit", "event_id", eventID)
	d, err := h.service.EditEvent(r.Context(), eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "edit draft failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "edit draft opened", "draft_id", d.ID, "action", d.Action)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, draftResponse{Draft: toDraftDTO(d)})
}

type eventsResponse struct {
	Events []eventapi.Event `json:"events"`
}
