package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/event-admin/internal/eventapi"
)

var (
	// ErrNotFound is returned when the requested draft or event does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSubmitInProgress is returned when a draft is touched while its submission is in flight.
	ErrSubmitInProgress = errors.New("application: submission already in progress")
	// ErrUniformMode is returned when a per-day time is set on a draft in uniform mode.
	ErrUniformMode = errors.New("application: draft is in uniform time mode")
	// ErrScheduleIncomplete is returned when a draft's dates or times cannot be rendered yet.
	ErrScheduleIncomplete = errors.New("application: schedule is incomplete")
)

// Problem is a single validation failure.
type Problem struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validation problem codes.
const (
	CodeRequired     = "required"
	CodeDateRange    = "date_range"
	CodeTimeFormat   = "time_format"
	CodeTimeOrder    = "time_order"
	CodeTimePast     = "time_past"
	CodeCoordinates  = "coordinates"
	CodeHashtags     = "hashtags"
	CodeAudience     = "audience"
	CodeRegistration = "registration"
	CodeImage        = "image"
	CodeSchedule     = "schedule"
)

// ValidationError collects every rule violation found in a draft, in rule order.
type ValidationError struct {
	Problems []Problem
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.Problems) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d problem(s)", len(v.Problems))
}

// HasErrors reports whether any problems were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Problems) > 0
}

// Has reports whether a problem with the given code was recorded.
func (v *ValidationError) Has(code string) bool {
	if v == nil {
		return false
	}
	for _, p := range v.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

// FieldErrors returns the first message recorded per field.
func (v *ValidationError) FieldErrors() map[string]string {
	if v == nil || len(v.Problems) == 0 {
		return nil
	}
	out := make(map[string]string, len(v.Problems))
	for _, p := range v.Problems {
		if _, ok := out[p.Field]; !ok {
			out[p.Field] = p.Message
		}
	}
	return out
}

// add records a problem.
func (v *ValidationError) add(field, code, message string) {
	v.Problems = append(v.Problems, Problem{Field: field, Code: code, Message: message})
}

// merge appends problems from another validation error.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	v.Problems = append(v.Problems, other.Problems...)
}

// StaleTimeError is a validation failure detected at the submission boundary: the draft
// passed validation but a start time slipped into the past before dispatch.
type StaleTimeError struct {
	Validation *ValidationError
}

// Error implements the error interface.
func (e *StaleTimeError) Error() string {
	return "schedule start time passed before submission"
}

// Unwrap lets errors.As find the underlying *ValidationError.
func (e *StaleTimeError) Unwrap() error {
	if e.Validation == nil {
		return nil
	}
	return e.Validation
}

// TransportError wraps a failed call to the Event Service. The draft is left untouched so
// it can be resubmitted.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteMessage returns the message the Event Service reported, or the transport error text.
func (e *TransportError) RemoteMessage() string {
	var remote *eventapi.RemoteError
	if errors.As(e.Err, &remote) && strings.TrimSpace(remote.Message) != "" {
		return remote.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}
