package models

// JobStatus is the lifecycle state of an ingestion job. Transitions are
// monotonic: pending → in_progress → completed or failed, never backwards.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// rank orders statuses for monotonicity checks.
func (s JobStatus) rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusInProgress:
		return 1
	case JobStatusCompleted, JobStatusFailed:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next respects the
// monotonic lifecycle. Terminal states accept no further transitions.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s == next {
		return false
	}
	if s == JobStatusCompleted || s == JobStatusFailed {
		return false
	}
	return next.rank() > s.rank()
}

// IngestionJob tracks one file batch. Processed counts success and skip
// alike and never exceeds Total.
type IngestionJob struct {
	ID        string            `json:"job_id"`
	Status    JobStatus         `json:"status"`
	Processed int               `json:"processed"`
	Total     int               `json:"total"`
	Message   string            `json:"message,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
