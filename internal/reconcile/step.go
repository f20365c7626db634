package reconcile

import (
	"context"

	"autobot/internal/syllabus"
)

// ApplyOptions carries the run flags and the state observed by Exists.
type ApplyOptions struct {
	Overwrite bool
	// Existed is the answer Exists gave immediately before Apply.
	Existed bool
}

// Step materialises one artifact kind for a meeting. Implementations must be
// safe for concurrent use across distinct meetings and must be individually
// idempotent so an interrupted run can simply be repeated.
type Step interface {
	Kind() ArtifactKind
	// Exists reports whether the artifact is already present. It must not
	// mutate anything.
	Exists(ctx context.Context, m syllabus.Meeting) (bool, error)
	// Apply creates or updates the artifact. Returning an error is equivalent
	// to returning a failed outcome.
	Apply(ctx context.Context, m syllabus.Meeting, opts ApplyOptions) (Outcome, error)
}
