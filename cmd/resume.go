package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/arcfit/internal/fit"
	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/store"
	"github.com/spf13/cobra"
)

var resumeDataDir string

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Re-run a checkpointed fit from its saved best candidate",
	Long: `Loads the checkpoint for a job and restarts the search from the saved
center. The cooling schedule restarts, but seeding the search with the
saved candidate means the best score cannot regress.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not resumable: %w", err)
	}

	ps, err := pointSetFromJobConfig(checkpoint.Config)
	if err != nil {
		return fmt.Errorf("failed to rebuild point set: %w", err)
	}

	tactic, err := fit.ParseTactic(checkpoint.Config.Tactic)
	if err != nil {
		return err
	}

	cfg := fit.DefaultConfig()
	if checkpoint.Config.InitialStep > 0 {
		cfg.InitialStep = checkpoint.Config.InitialStep
	}
	if checkpoint.Config.ShrinkFactor > 0 {
		cfg.ShrinkFactor = checkpoint.Config.ShrinkFactor
	}
	if checkpoint.Config.MinStep > 0 {
		cfg.MinStep = checkpoint.Config.MinStep
	}
	if checkpoint.Config.MaxIterations > 0 {
		cfg.MaxIterations = checkpoint.Config.MaxIterations
	}
	cfg.Start = &checkpoint.Center

	trace, err := checkpointStore.TraceWriter(jobID, true)
	if err != nil {
		slog.Warn("Failed to open trace writer", "job_id", jobID, "error", err)
	} else {
		defer trace.Close()
		baseIteration := checkpoint.Iterations
		cfg.OnImprove = func(iteration int, c fit.Circle, score float64) {
			trace.Write(store.TraceEntry{
				Iteration: baseIteration + iteration,
				Score:     score,
				X:         c.Center.X,
				Y:         c.Center.Y,
				R:         c.R,
				Timestamp: time.Now(),
			})
		}
	}

	slog.Info("Resuming fit",
		"job_id", jobID,
		"tactic", tactic,
		"from_iteration", checkpoint.Iterations,
		"saved_score", checkpoint.BestScore,
	)

	result, err := fit.Fit(ps, tactic, cfg)
	if err != nil {
		return err
	}

	updated := &store.Checkpoint{
		JobID:        jobID,
		Center:       result.Circle.Center,
		Radius:       result.Circle.R,
		BestScore:    result.Score,
		InitialScore: checkpoint.InitialScore,
		Iterations:   checkpoint.Iterations + result.Iterations,
		Status:       string(result.Status),
		Timestamp:    time.Now(),
		Config:       checkpoint.Config,
	}
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	fmt.Printf("%s  score=%.6g -> %.6g  %s after %d more iterations\n",
		result.Circle.String(), checkpoint.BestScore, result.Score, result.Status, result.Iterations)
	return nil
}

// pointSetFromJobConfig rebuilds the job's input points, regenerating
// synthetic arcs with the saved seed so the data is identical.
func pointSetFromJobConfig(config store.JobConfig) (*geom.PointSet, error) {
	if len(config.Points) > 0 {
		return geom.NewPointSet(config.Points)
	}

	gen := geom.DefaultArcConfig()
	if config.Generator != nil {
		gen = *config.Generator
	}

	var rng *rand.Rand
	if gen.JitterRatio > 0 {
		rng = rand.New(rand.NewSource(config.Seed))
	}
	return geom.NewPointSet(geom.GenerateArc(gen, rng))
}
