package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/arcfit/internal/geom"
)

// JobConfig holds the full description of a fit job: the input points
// (given directly or as a generator recipe), the scoring tactic, the
// search backend, and its tuning. It lives here rather than in the
// server package so checkpoints can embed it without an import cycle.
type JobConfig struct {
	// Points are the samples to fit. Mutually exclusive with Generator.
	Points []geom.Point `json:"points,omitempty"`

	// Generator synthesizes the samples server-side when Points is empty.
	Generator *geom.ArcConfig `json:"generator,omitempty"`

	// Seed drives the generator jitter and the mayfly backend.
	Seed int64 `json:"seed,omitempty"`

	// Tactic is the scoring strategy: "angle" or "radius".
	Tactic string `json:"tactic"`

	// Algo is the search backend: "hillclimb" (default) or "mayfly".
	Algo string `json:"algo,omitempty"`

	InitialStep   float64 `json:"initialStep,omitempty"`
	ShrinkFactor  float64 `json:"shrinkFactor,omitempty"`
	MinStep       float64 `json:"minStep,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty"`

	// PopSize is the mayfly population size.
	PopSize int `json:"popSize,omitempty"`

	// CheckpointInterval saves a checkpoint every N seconds while the
	// job runs (0 = only the final checkpoint).
	CheckpointInterval int `json:"checkpointInterval,omitempty"`
}

// Checkpoint is the persisted state of a fit job. It stores the best
// candidate found so far, not the search's internal state: resuming
// restarts the cooling schedule from the saved center, which loses a
// little convergence speed but keeps the format independent of the
// backend. The best score never regresses across a resume because the
// saved center seeds the new search.
type Checkpoint struct {
	JobID string `json:"jobId"`

	// Center and Radius describe the best candidate circle so far.
	Center geom.Point `json:"center"`
	Radius float64    `json:"radius"`

	// BestScore is the metric score achieved by the saved candidate.
	BestScore float64 `json:"bestScore"`

	// InitialScore is the score at the starting candidate, kept for
	// improvement tracking.
	InitialScore float64 `json:"initialScore"`

	// Iterations completed when this checkpoint was created.
	Iterations int `json:"iterations"`

	// Status is the terminal search status if the job finished, or
	// "running" for an interval checkpoint.
	Status string `json:"status"`

	Timestamp time.Time `json:"timestamp"`

	// Config is kept for validation during resume.
	Config JobConfig `json:"config"`
}

// CheckpointInfo is checkpoint metadata without the input points, for
// efficient listings.
type CheckpointInfo struct {
	JobID      string    `json:"jobId"`
	BestScore  float64   `json:"bestScore"`
	Iterations int       `json:"iterations"`
	Status     string    `json:"status"`
	Tactic     string    `json:"tactic"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToInfo converts a checkpoint to its listing metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:      c.JobID,
		BestScore:  c.BestScore,
		Iterations: c.Iterations,
		Status:     c.Status,
		Tactic:     c.Config.Tactic,
		Timestamp:  c.Timestamp,
	}
}

// Validate checks that the checkpoint is complete enough to resume from.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.Radius < 0 {
		return &ValidationError{Field: "Radius", Reason: "cannot be negative"}
	}
	if c.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Tactic == "" {
		return &ValidationError{Field: "Config.Tactic", Reason: "cannot be empty"}
	}
	if len(c.Config.Points) == 0 && c.Config.Generator == nil {
		return &ValidationError{Field: "Config", Reason: "needs points or a generator"}
	}
	if len(c.Config.Points) > 0 && len(c.Config.Points) < geom.MinPoints {
		return &ValidationError{
			Field:  "Config.Points",
			Reason: fmt.Sprintf("needs at least %d points", geom.MinPoints),
		}
	}
	return nil
}

// ValidationError reports an invalid checkpoint field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks whether the checkpoint can seed a run with the
// given config. The tactic and the input description must match; tuning
// parameters are free to change.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Tactic != config.Tactic {
		return &CompatibilityError{
			Field:    "Tactic",
			Expected: c.Config.Tactic,
			Actual:   config.Tactic,
		}
	}
	if len(c.Config.Points) != len(config.Points) {
		return &CompatibilityError{
			Field:    "Points",
			Expected: fmt.Sprintf("%d", len(c.Config.Points)),
			Actual:   fmt.Sprintf("%d", len(config.Points)),
		}
	}
	if (c.Config.Generator == nil) != (config.Generator == nil) {
		return &CompatibilityError{
			Field:    "Generator",
			Expected: fmt.Sprintf("%v", c.Config.Generator != nil),
			Actual:   fmt.Sprintf("%v", config.Generator != nil),
		}
	}
	return nil
}

// CompatibilityError reports a checkpoint/config mismatch.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
