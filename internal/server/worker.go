package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cwbudde/arcfit/internal/fit"
	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/plot"
	"github.com/cwbudde/arcfit/internal/store"
)

// runJob executes a fit job in the background. If checkpointStore is not
// nil, the job's best candidate is checkpointed periodically (when the
// config asks for it) and always once on completion, together with a
// plot.png artifact and the per-improvement score trace.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "tactic", job.Config.Tactic, "algo", job.Config.Algo)

	ps, err := buildPointSet(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to build point set: %w", err))
		return err
	}

	var trace *store.TraceWriter
	if fsStore, ok := checkpointStore.(*store.FSStore); ok {
		trace, err = fsStore.TraceWriter(jobID, false)
		if err != nil {
			slog.Warn("Failed to open trace writer", "job_id", jobID, "error", err)
			trace = nil
		} else {
			defer trace.Close()
		}
	}

	cfg := fitConfigFrom(job.Config)
	cfg.OnImprove = func(iteration int, c fit.Circle, score float64) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.BestCircle = &c
			j.BestScore = score
			j.Iterations = iteration
		})
		if trace != nil {
			trace.Write(store.TraceEntry{
				Iteration: iteration,
				Score:     score,
				X:         c.Center.X,
				Y:         c.Center.Y,
				R:         c.R,
				Timestamp: time.Now(),
			})
		}
	}

	// Check for cancellation before starting the search
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()

	// Progress broadcasting is throttled by a ticker rather than driven
	// by OnImprove, which can fire thousands of times per second.
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	} else {
		close(checkpointDone)
	}

	result, err := runFit(ps, job.Config, cfg)

	close(progressDone)
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		close(checkpointDone)
	}

	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestCircle = &result.Circle
		j.BestScore = result.Score
		j.InitialScore = result.InitialScore
		j.Iterations = result.Iterations
		j.FitStatus = string(result.Status)
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if trace != nil {
		if err := trace.Flush(); err != nil {
			slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
		}
	}

	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Error("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
		if err := savePlotArtifact(checkpointStore, ps, jobID, &result.Circle); err != nil {
			slog.Warn("Failed to save plot artifact", "job_id", jobID, "error", err)
		}
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", endTime.Sub(start),
		"status", result.Status,
		"iterations", result.Iterations,
		"initial_score", result.InitialScore,
		"best_score", result.Score,
		"circle", result.Circle.String(),
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:      jobID,
		State:      StateCompleted,
		Iterations: result.Iterations,
		BestScore:  result.Score,
		Radius:     result.Circle.R,
		Timestamp:  time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events during a run
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			event := ProgressEvent{
				JobID:      jobID,
				State:      job.State,
				Iterations: job.Iterations,
				BestScore:  job.BestScore,
				Timestamp:  time.Now(),
			}
			if job.BestCircle != nil {
				event.Radius = job.BestCircle.R
			}
			jm.broadcaster.Broadcast(event)
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during a run
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint persists the job's current best candidate
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if job.BestCircle == nil {
		slog.Debug("Skipping checkpoint, no best candidate yet", "job_id", jobID)
		return nil
	}

	status := job.FitStatus
	if status == "" {
		status = "running"
	}

	checkpoint := &store.Checkpoint{
		JobID:        jobID,
		Center:       job.BestCircle.Center,
		Radius:       job.BestCircle.R,
		BestScore:    job.BestScore,
		InitialScore: job.InitialScore,
		Iterations:   job.Iterations,
		Status:       status,
		Timestamp:    time.Now(),
		Config:       job.Config,
	}

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Debug("Checkpoint saved", "job_id", jobID, "iteration", job.Iterations, "best_score", job.BestScore)
	return nil
}

// savePlotArtifact renders the fitted circle over the points into the
// job's artifact directory. Requires a filesystem-backed store.
func savePlotArtifact(checkpointStore store.Store, ps *geom.PointSet, jobID string, fitted *fit.Circle) error {
	fsStore, ok := checkpointStore.(*store.FSStore)
	if !ok {
		return nil
	}

	img := plot.Render(ps, fitted, nil, plot.DefaultOptions())
	return plot.WritePNG(filepath.Join(fsStore.JobDir(jobID), "plot.png"), img)
}
