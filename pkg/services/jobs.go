package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// JobTracker is an in-memory registry of ingestion jobs. Status
// transitions are monotonic; attempts to move a job backwards or out of a
// terminal state are rejected.
type JobTracker struct {
	mu   sync.Mutex
	jobs map[string]*models.IngestionJob
}

// NewJobTracker creates an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]*models.IngestionJob)}
}

// Create registers a new pending job and returns its ID.
func (t *JobTracker) Create(total int, metadata map[string]string) *models.IngestionJob {
	job := &models.IngestionJob{
		ID:       uuid.NewString(),
		Status:   models.JobStatusPending,
		Total:    total,
		Metadata: metadata,
	}
	if job.Metadata == nil {
		job.Metadata = map[string]string{}
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	return job
}

// Get returns a snapshot of the job, or ErrJobNotFound.
func (t *JobTracker) Get(id string) (models.IngestionJob, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return models.IngestionJob{}, fmt.Errorf("%w: %s", apperrors.ErrJobNotFound, id)
	}
	return snapshotJob(job), nil
}

// List returns snapshots of all jobs.
func (t *JobTracker) List() []models.IngestionJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	jobs := make([]models.IngestionJob, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, snapshotJob(job))
	}
	return jobs
}

// Transition moves the job to the given status with a message. Invalid
// transitions return an error and leave the job untouched.
func (t *JobTracker) Transition(id string, status models.JobStatus, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrJobNotFound, id)
	}
	if !job.Status.CanTransitionTo(status) {
		return fmt.Errorf("job %s cannot move from %s to %s", id, job.Status, status)
	}

	job.Status = status
	if message != "" {
		job.Message = message
	}
	return nil
}

// IncrementProcessed bumps the processed counter, capped at total.
func (t *JobTracker) IncrementProcessed(id string, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrJobNotFound, id)
	}
	if job.Processed < job.Total {
		job.Processed++
	}
	if message != "" {
		job.Message = message
	}
	return nil
}

// AnnotateFile records a per-file note (skip or failure reason) in the
// job metadata.
func (t *JobTracker) AnnotateFile(id, filename, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.jobs[id]; ok {
		job.Metadata["file:"+filename] = note
	}
}

func snapshotJob(job *models.IngestionJob) models.IngestionJob {
	snapshot := *job
	snapshot.Metadata = make(map[string]string, len(job.Metadata))
	for k, v := range job.Metadata {
		snapshot.Metadata[k] = v
	}
	return snapshot
}
