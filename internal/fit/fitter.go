package fit

import (
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/opt"
)

// Config tunes one fit run. Zero values fall back to DefaultConfig
// semantics where noted.
type Config struct {
	// InitialStep is the starting center perturbation. 0 derives it from
	// the point set: half the bounding-box span.
	InitialStep float64

	// ShrinkFactor cools the step after iterations with no improvement.
	ShrinkFactor float64

	// MinStep is the convergence threshold for the step size.
	MinStep float64

	// MaxIterations caps the search.
	MaxIterations int

	// MaxDuration optionally caps wall-clock time; 0 means no limit.
	MaxDuration time.Duration

	// Start overrides the centroid as the initial center. Used when
	// resuming from a checkpoint.
	Start *geom.Point

	// OnImprove, when set, observes every accepted improvement.
	OnImprove func(iteration int, c Circle, score float64)
}

// DefaultConfig returns the stock search settings.
func DefaultConfig() Config {
	return Config{
		ShrinkFactor:  0.5,
		MinStep:       1e-6,
		MaxIterations: 10000,
	}
}

// Result is the outcome of one fit run. Status distinguishes a genuine
// convergence from an exhausted iteration budget; both carry the best
// candidate found.
type Result struct {
	Circle       Circle     `json:"circle"`
	Score        float64    `json:"score"`
	InitialScore float64    `json:"initialScore"`
	Iterations   int        `json:"iterations"`
	Status       opt.Status `json:"status"`
	Tactic       Tactic     `json:"tactic"`
}

// Fit searches for the circle that best explains ps under the given
// tactic, using the hill-climb search configured by cfg.
//
// The search space is the center; the radius is re-derived as the mean
// center-to-point distance after every accepted move, since both tactics
// judge a candidate by its center alone. Returns
// *geom.DegenerateGeometryError when all points coincide.
func Fit(ps *geom.PointSet, tactic Tactic, cfg Config) (*Result, error) {
	metric, err := MetricFor(tactic)
	if err != nil {
		return nil, err
	}

	if cfg.ShrinkFactor <= 0 || cfg.ShrinkFactor >= 1 {
		cfg.ShrinkFactor = 0.5
	}
	if cfg.MinStep <= 0 {
		cfg.MinStep = 1e-6
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10000
	}
	step := cfg.InitialStep
	if step <= 0 {
		step = ps.Span() / 2
	}

	hcCfg := opt.HillClimbConfig{
		InitialStep:   step,
		ShrinkFactor:  cfg.ShrinkFactor,
		MinStep:       cfg.MinStep,
		MaxIterations: cfg.MaxIterations,
		MaxDuration:   cfg.MaxDuration,
	}
	if cfg.OnImprove != nil {
		onImprove := cfg.OnImprove
		hcCfg.OnImprove = func(iteration int, best []float64, cost float64) {
			onImprove(iteration, circleAt(ps, best), cost)
		}
	}

	return fitWith(ps, metric, opt.NewHillClimb(hcCfg), cfg.Start)
}

// FitWith runs the fit with a caller-supplied optimizer backend, starting
// from the centroid. Used to swap in population-based search.
func FitWith(ps *geom.PointSet, metric Metric, optimizer opt.Optimizer) (*Result, error) {
	return fitWith(ps, metric, optimizer, nil)
}

func fitWith(ps *geom.PointSet, metric Metric, optimizer opt.Optimizer, start *geom.Point) (*Result, error) {
	if ps.Coincident() {
		return nil, &geom.DegenerateGeometryError{At: ps.At(0)}
	}

	init := ps.Centroid()
	if start != nil {
		init = *start
	}

	eval := func(params []float64) float64 {
		return metric.Score(circleAt(ps, params), ps)
	}

	initialScore := eval([]float64{init.X, init.Y})
	slog.Debug("Starting fit", "tactic", metric.Name(), "points", ps.Len(), "initial_score", initialScore)

	res := optimizer.Minimize(eval, []float64{init.X, init.Y})

	circle := circleAt(ps, res.Best)
	slog.Debug("Fit finished",
		"tactic", metric.Name(),
		"status", res.Status,
		"iterations", res.Iterations,
		"score", res.Cost,
		"circle", circle.String(),
	)

	return &Result{
		Circle:       circle,
		Score:        res.Cost,
		InitialScore: initialScore,
		Iterations:   res.Iterations,
		Status:       res.Status,
		Tactic:       metric.Name(),
	}, nil
}

// circleAt builds the candidate for a center parameter vector. The
// radius is the mean center-to-point distance, which is the radius that
// best explains the points for any fixed center.
func circleAt(ps *geom.PointSet, params []float64) Circle {
	center := geom.Point{X: params[0], Y: params[1]}
	return Circle{Center: center, R: ps.MeanDistance(center)}
}

// SearchBounds returns scalar lower/upper bounds enclosing any plausible
// center for ps, for optimizer backends that need a bounded search box.
func SearchBounds(ps *geom.PointSet) (lower, upper float64) {
	min, max := ps.Bounds()
	span := ps.Span()
	lower = math.Min(min.X, min.Y) - span
	upper = math.Max(max.X, max.Y) + span
	return lower, upper
}
