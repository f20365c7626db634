package reconcile

import (
	"fmt"
	"strings"
	"time"

	"autobot/internal/syllabus"
)

// MeetingResult collects one meeting's step outcomes.
type MeetingResult struct {
	Meeting  syllabus.Meeting
	Outcomes []Outcome
	Started  time.Time
	Finished time.Time
}

// Count returns how many outcomes have kind.
func (r MeetingResult) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Failed reports whether any step failed.
func (r MeetingResult) Failed() bool {
	return r.Count(OutcomeFailed) > 0
}

// Outcome returns the outcome for step, if it ran.
func (r MeetingResult) Outcome(step ArtifactKind) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Step == step {
			return o, true
		}
	}
	return Outcome{}, false
}

// Failure names one failed step.
type Failure struct {
	Meeting syllabus.Meeting
	Step    ArtifactKind
	Err     error
}

// Report is the result of one reconcile pass.
type Report struct {
	RunID    string
	Results  []MeetingResult
	Started  time.Time
	Finished time.Time
}

// Summary tallies outcomes by kind.
type Summary map[OutcomeKind]int

// Total is the number of outcomes counted.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// String renders non-zero counts, e.g. "created=3 skipped-exists=2 failed=1".
func (s Summary) String() string {
	parts := make([]string, 0, len(OutcomeKinds))
	for _, kind := range OutcomeKinds {
		if n := s[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, n))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, " ")
}

// Summary counts every step outcome in the report.
func (r Report) Summary() Summary {
	s := make(Summary, len(OutcomeKinds))
	for _, res := range r.Results {
		for _, o := range res.Outcomes {
			s[o.Kind]++
		}
	}
	return s
}

// Failed returns every failed step in chronological order.
func (r Report) Failed() []Failure {
	var out []Failure
	for _, res := range r.Results {
		for _, o := range res.Outcomes {
			if o.Kind == OutcomeFailed {
				out = append(out, Failure{Meeting: res.Meeting, Step: o.Step, Err: o.Err})
			}
		}
	}
	return out
}

// Duration is the wall time of the pass.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
