package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/cwbudde/arcfit/internal/fit"
	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/opt"
	"github.com/cwbudde/arcfit/internal/plot"
	"github.com/spf13/cobra"
)

var (
	fitInPath     string
	fitTacticName string
	fitAlgo       string
	fitIters      int
	fitStep       float64
	fitShrink     float64
	fitMinStep    float64
	fitMaxSeconds float64
	fitPopSize    int
	fitSeed       int64
	fitPlotPath   string

	// Generator fallback when no input file is given.
	fitNumPoints int
	fitArcRatio  float64
	fitJitter    float64
	fitRadius    float64
	fitCenterX   float64
	fitCenterY   float64
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a circle to a point set",
	Long: `Fits a circle to points read from a JSON file, or to a synthetic arc
generated from the --points/--arc-ratio/--jitter flags when no file is
given. Use --tactic both to compare the two scoring tactics on the same
data.`,
	RunE: runFitCmd,
}

func init() {
	fitCmd.Flags().StringVar(&fitInPath, "in", "", "Input JSON file with points (default: generate synthetic arc)")
	fitCmd.Flags().StringVar(&fitTacticName, "tactic", "radius", "Scoring tactic: angle, radius, both")
	fitCmd.Flags().StringVar(&fitAlgo, "algo", "hillclimb", "Search backend: hillclimb, mayfly")
	fitCmd.Flags().IntVar(&fitIters, "iters", 10000, "Max iterations")
	fitCmd.Flags().Float64Var(&fitStep, "step", 0, "Initial step size (0 = derive from data extent)")
	fitCmd.Flags().Float64Var(&fitShrink, "shrink", 0.5, "Step shrink factor per stalled iteration")
	fitCmd.Flags().Float64Var(&fitMinStep, "min-step", 1e-6, "Convergence threshold for the step size")
	fitCmd.Flags().Float64Var(&fitMaxSeconds, "max-seconds", 0, "Wall-clock budget (0 = unlimited)")
	fitCmd.Flags().IntVar(&fitPopSize, "pop", 30, "Population size (mayfly backend)")
	fitCmd.Flags().Int64Var(&fitSeed, "seed", 42, "Random seed (generator jitter, mayfly backend)")
	fitCmd.Flags().StringVar(&fitPlotPath, "plot", "", "Write a PNG plot of points and fitted circle(s)")

	fitCmd.Flags().IntVar(&fitNumPoints, "points", 50, "Generated: number of points on the full circle")
	fitCmd.Flags().Float64Var(&fitArcRatio, "arc-ratio", 0.3, "Generated: fraction of the circle covered")
	fitCmd.Flags().Float64Var(&fitJitter, "jitter", 0.05, "Generated: jitter ratio")
	fitCmd.Flags().Float64Var(&fitRadius, "radius", 10, "Generated: true radius")
	fitCmd.Flags().Float64Var(&fitCenterX, "center-x", 0, "Generated: true center x")
	fitCmd.Flags().Float64Var(&fitCenterY, "center-y", 0, "Generated: true center y")

	rootCmd.AddCommand(fitCmd)
}

func runFitCmd(cmd *cobra.Command, args []string) error {
	points, err := fitInputPoints()
	if err != nil {
		return err
	}

	ps, err := geom.NewPointSet(points)
	if err != nil {
		return err
	}

	var tactics []fit.Tactic
	if fitTacticName == "both" {
		tactics = []fit.Tactic{fit.TacticRadius, fit.TacticAngle}
	} else {
		tactic, err := fit.ParseTactic(fitTacticName)
		if err != nil {
			return err
		}
		tactics = []fit.Tactic{tactic}
	}

	results := make([]*fit.Result, 0, len(tactics))
	for _, tactic := range tactics {
		start := time.Now()
		result, err := runFitOnce(ps, tactic)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		slog.Info("Fit complete",
			"tactic", tactic,
			"status", result.Status,
			"iterations", result.Iterations,
			"elapsed", elapsed,
			"initial_score", result.InitialScore,
			"score", result.Score,
		)
		fmt.Printf("%-6s  %s  score=%.6g  %s after %d iterations\n",
			tactic, result.Circle.String(), result.Score, result.Status, result.Iterations)

		results = append(results, result)
	}

	if fitPlotPath != "" {
		var reference *fit.Circle
		if len(results) > 1 {
			reference = &results[1].Circle
		}
		img := plot.Render(ps, &results[0].Circle, reference, plot.DefaultOptions())
		if err := plot.WritePNG(fitPlotPath, img); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", fitPlotPath)
	}

	return nil
}

// fitInputPoints loads the input file or generates a synthetic arc.
func fitInputPoints() ([]geom.Point, error) {
	if fitInPath != "" {
		return loadPoints(fitInPath)
	}

	cfg := geom.ArcConfig{
		Center:      geom.Point{X: fitCenterX, Y: fitCenterY},
		Radius:      fitRadius,
		NumPoints:   fitNumPoints,
		ArcRatio:    fitArcRatio,
		JitterRatio: fitJitter,
	}

	var rng *rand.Rand
	if cfg.JitterRatio > 0 {
		rng = rand.New(rand.NewSource(fitSeed))
	}

	slog.Info("Generating synthetic arc",
		"points", cfg.NumPoints,
		"arc_ratio", cfg.ArcRatio,
		"jitter", cfg.JitterRatio,
		"radius", cfg.Radius,
	)
	return geom.GenerateArc(cfg, rng), nil
}

func runFitOnce(ps *geom.PointSet, tactic fit.Tactic) (*fit.Result, error) {
	cfg := fit.Config{
		InitialStep:   fitStep,
		ShrinkFactor:  fitShrink,
		MinStep:       fitMinStep,
		MaxIterations: fitIters,
		MaxDuration:   time.Duration(fitMaxSeconds * float64(time.Second)),
	}

	switch fitAlgo {
	case "hillclimb":
		return fit.Fit(ps, tactic, cfg)
	case "mayfly":
		metric, err := fit.MetricFor(tactic)
		if err != nil {
			return nil, err
		}
		lower, upper := fit.SearchBounds(ps)
		return fit.FitWith(ps, metric, opt.NewMayfly(fitIters, fitPopSize, fitSeed, lower, upper))
	default:
		return nil, fmt.Errorf("unknown algo: %s", fitAlgo)
	}
}

// loadPoints reads a JSON array of {x, y} objects.
func loadPoints(path string) ([]geom.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read points file: %w", err)
	}

	var points []geom.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to parse points file: %w", err)
	}
	return points, nil
}
