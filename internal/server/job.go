package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/arcfit/internal/fit"
	"github.com/cwbudde/arcfit/internal/store"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig is an alias to avoid duplication with store.JobConfig
type JobConfig = store.JobConfig

// Job represents one fit run. FitStatus carries the terminal search
// status (converged or max_iterations_reached) once the job completes,
// so callers can tell a genuine convergence from an exhausted budget.
type Job struct {
	ID           string      `json:"id"`
	State        JobState    `json:"state"`
	Config       JobConfig   `json:"config"`
	BestCircle   *fit.Circle `json:"bestCircle,omitempty"`
	BestScore    float64     `json:"bestScore"`
	InitialScore float64     `json:"initialScore"`
	Iterations   int         `json:"iterations"`
	FitStatus    string      `json:"fitStatus,omitempty"`
	StartTime    time.Time   `json:"startTime"`
	EndTime      *time.Time  `json:"endTime,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// clone returns a snapshot safe to read outside the manager's lock.
// BestCircle and EndTime are replaced wholesale by UpdateJob callbacks,
// never mutated in place, but the snapshot still gets its own copies so
// callers cannot reach back into the stored record.
func (j *Job) clone() *Job {
	c := *j
	if j.BestCircle != nil {
		circle := *j.BestCircle
		c.BestCircle = &circle
	}
	if j.EndTime != nil {
		t := *j.EndTime
		c.EndTime = &t
	}
	return &c
}

// JobManager manages the lifecycle of jobs. The stored records are only
// ever touched under the mutex; every accessor returns a snapshot, so
// readers never race with UpdateJob.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	cancels     map[string]context.CancelFunc
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		cancels:     make(map[string]context.CancelFunc),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new job with the given configuration and returns
// a snapshot of it.
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job.clone()
}

// GetJob retrieves a snapshot of a job by ID.
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	return job.clone(), true
}

// ListJobs returns snapshots of all jobs.
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job.clone())
	}
	return jobs
}

// TrackCancel registers the cancel function for a job's worker so that
// removing the job stops the work.
func (jm *JobManager) TrackCancel(id string, cancel context.CancelFunc) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.cancels[id] = cancel
}

// ReleaseCancel drops (and invokes) the job's cancel function once the
// worker has finished, releasing the context's resources.
func (jm *JobManager) ReleaseCancel(id string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if cancel, ok := jm.cancels[id]; ok {
		cancel()
		delete(jm.cancels, id)
	}
}

// RemoveJob deletes a job record, cancelling its worker if one is still
// running. The caller is responsible for any persisted artifacts.
func (jm *JobManager) RemoveJob(id string) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if _, exists := jm.jobs[id]; !exists {
		return false
	}
	delete(jm.jobs, id)
	if cancel, ok := jm.cancels[id]; ok {
		cancel()
		delete(jm.cancels, id)
	}
	jm.broadcaster.CleanupJob(id)
	return true
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns snapshots of all jobs currently in the running
// state.
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			runningJobs = append(runningJobs, job.clone())
		}
	}
	return runningJobs
}
