package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	meetingKey contextKey = "meeting"
	stepKey    contextKey = "step"
)

// WithRunID annotates context with the reconciliation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMeeting annotates context with the meeting slug being reconciled.
func WithMeeting(ctx context.Context, slug string) context.Context {
	if slug == "" {
		return ctx
	}
	return context.WithValue(ctx, meetingKey, slug)
}

// MeetingFromContext returns the meeting slug if present.
func MeetingFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(meetingKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStep annotates context with the artifact step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stepKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
