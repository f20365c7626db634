package logging

import (
	"context"
	"log/slog"

	"autobot/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for reconciliation run identifiers.
	FieldRunID = "run_id"
	// FieldMeeting is the standardized structured logging key for meeting slugs.
	FieldMeeting = "meeting"
	// FieldStep is the standardized structured logging key for artifact step names.
	FieldStep = "step"
	// FieldGroup is the standardized structured logging key for group names.
	FieldGroup = "group"
	// FieldSemester is the standardized structured logging key for semester short names.
	FieldSemester = "semester"
	// FieldEventType classifies a log line for filtering (e.g. step_failed).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's next step for warnings and errors.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if slug, ok := services.MeetingFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMeeting, slug))
	}
	if step, ok := services.StepFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStep, step))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
