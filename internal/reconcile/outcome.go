package reconcile

import (
	"time"
)

// OutcomeKind classifies what a step did for one meeting.
type OutcomeKind string

const (
	OutcomeCreated       OutcomeKind = "created"
	OutcomeUpdated       OutcomeKind = "updated"
	OutcomeSkippedExists OutcomeKind = "skipped-exists"
	OutcomeFailed        OutcomeKind = "failed"
	// OutcomeSkipped means the step had nothing to do: it is disabled,
	// unconfigured, or opted out by the meeting.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeBlocked means a step this one requires failed.
	OutcomeBlocked OutcomeKind = "blocked"
)

// OutcomeKinds lists every outcome kind in summary order.
var OutcomeKinds = []OutcomeKind{
	OutcomeCreated,
	OutcomeUpdated,
	OutcomeSkippedExists,
	OutcomeSkipped,
	OutcomeBlocked,
	OutcomeFailed,
}

// Outcome is the result of one step for one meeting.
type Outcome struct {
	Step     ArtifactKind
	Kind     OutcomeKind
	Detail   string
	Err      error
	Duration time.Duration
}

// Created reports a newly materialised artifact.
func Created(detail string) Outcome { return Outcome{Kind: OutcomeCreated, Detail: detail} }

// Updated reports an artifact brought up to date.
func Updated(detail string) Outcome { return Outcome{Kind: OutcomeUpdated, Detail: detail} }

// SkippedExists reports an artifact already in its desired state.
func SkippedExists(detail string) Outcome {
	return Outcome{Kind: OutcomeSkippedExists, Detail: detail}
}

// Skipped reports a step with nothing to do.
func Skipped(reason string) Outcome { return Outcome{Kind: OutcomeSkipped, Detail: reason} }

// Failed reports a contained step error.
func Failed(err error) Outcome {
	o := Outcome{Kind: OutcomeFailed, Err: err}
	if err != nil {
		o.Detail = err.Error()
	}
	return o
}

// Changed reports whether the outcome mutated an artifact.
func (o Outcome) Changed() bool {
	return o.Kind == OutcomeCreated || o.Kind == OutcomeUpdated
}
