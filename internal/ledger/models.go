package ledger

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// InterruptedReason is recorded on runs left running by a process that died.
const InterruptedReason = "process exited before the run finished"

// Run is one upkeep invocation.
type Run struct {
	ID         string
	Group      string
	Semester   string
	Selector   string
	Overwrite  bool
	Status     Status
	Meetings   int
	Created    int
	Updated    int
	Skipped    int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration is the run's wall time, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StepRecord is one persisted step outcome.
type StepRecord struct {
	ID          int64
	RunID       string
	MeetingDate string
	MeetingName string
	Slug        string
	Step        string
	Outcome     string
	Detail      string
	Error       string
	Duration    time.Duration
	RecordedAt  time.Time
}

// RunStart describes a run being opened.
type RunStart struct {
	ID        string
	Group     string
	Semester  string
	Selector  string
	Overwrite bool
}

// RunTotals summarises a finished run.
type RunTotals struct {
	Meetings int
	Created  int
	Updated  int
	Skipped  int
	Failed   int
}
