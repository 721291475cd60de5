package eventapi

import (
	"errors"
	"fmt"
)

// ErrEventNotFound is returned when the service reports an unknown event id.
var ErrEventNotFound = errors.New("eventapi: event not found")

// RemoteError carries a failure reported by the Event Service or the transport beneath it.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("eventapi: %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("eventapi: %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("eventapi: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("eventapi: %s failed (status %d)", e.Op, e.StatusCode)
	}
}

// Unwrap exposes the underlying transport error, if any.
func (e *RemoteError) Unwrap() error {
	return e.Err
}
