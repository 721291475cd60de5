package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/event-admin/internal/logging"
	"github.com/example/event-admin/internal/schedule"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrScheduleIncomplete):
		return "schedule_incomplete"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSubmitInProgress):
		return "submit_in_progress"
	case errors.Is(err, ErrUniformMode):
		return "uniform_mode"
	case errors.Is(err, schedule.ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, schedule.ErrRangeTooLong):
		return "range_too_long"
	}

	var stale *StaleTimeError
	if errors.As(err, &stale) {
		return "stale_time"
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return "transport"
	}

	return "unexpected"
}
