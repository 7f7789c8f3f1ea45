package opt

import (
	"log/slog"
	"time"
)

// HillClimbConfig tunes the greedy local search. Pass a value per run;
// there is no shared mutable default, so concurrent runs with different
// settings never interfere.
type HillClimbConfig struct {
	// InitialStep is the starting perturbation size, in the same units
	// as the parameters.
	InitialStep float64

	// ShrinkFactor multiplies the step after an iteration with no
	// improvement, in (0, 1).
	ShrinkFactor float64

	// MinStep ends the search as converged once the step falls below it.
	MinStep float64

	// MaxIterations caps the search regardless of convergence.
	MaxIterations int

	// MaxDuration optionally caps wall-clock time; 0 means no limit.
	// Hitting it reports StatusMaxIterations, the budget-exhausted
	// outcome.
	MaxDuration time.Duration

	// OnImprove, when set, observes every accepted improvement.
	OnImprove Progress
}

// DefaultHillClimbConfig returns the stock cooling schedule. InitialStep
// is left at 0 because a sensible value depends on the data scale;
// callers derive it from their domain.
func DefaultHillClimbConfig() HillClimbConfig {
	return HillClimbConfig{
		ShrinkFactor:  0.5,
		MinStep:       1e-6,
		MaxIterations: 10000,
	}
}

// HillClimb is a deterministic coordinate search with a multiplicative
// cooling schedule. Each iteration proposes moving one parameter by
// the current step in either direction, accepts the best strictly
// improving proposal, and shrinks the step when nothing improves.
// Exact ties retain the current candidate.
type HillClimb struct {
	cfg HillClimbConfig
}

// NewHillClimb creates a hill climber with the given config.
func NewHillClimb(cfg HillClimbConfig) *HillClimb {
	return &HillClimb{cfg: cfg}
}

// Minimize runs the search from start. The best-known cost is
// non-increasing across iterations.
func (h *HillClimb) Minimize(eval Objective, start []float64) Result {
	dim := len(start)
	best := make([]float64, dim)
	copy(best, start)
	bestCost := eval(best)

	var deadline time.Time
	if h.cfg.MaxDuration > 0 {
		deadline = time.Now().Add(h.cfg.MaxDuration)
	}

	step := h.cfg.InitialStep
	cand := make([]float64, dim)

	for iter := 1; iter <= h.cfg.MaxIterations; iter++ {
		if step < h.cfg.MinStep {
			slog.Debug("Search converged", "iterations", iter-1, "cost", bestCost, "step", step)
			return Result{Best: best, Cost: bestCost, Iterations: iter - 1, Status: StatusConverged}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			slog.Debug("Search hit wall-clock budget", "iterations", iter-1, "cost", bestCost)
			return Result{Best: best, Cost: bestCost, Iterations: iter - 1, Status: StatusMaxIterations}
		}

		improved := false
		moveCost := bestCost
		var moveDim int
		var moveDelta float64

		for d := 0; d < dim; d++ {
			for _, delta := range [2]float64{step, -step} {
				copy(cand, best)
				cand[d] += delta
				if cost := eval(cand); cost < moveCost {
					moveCost = cost
					moveDim = d
					moveDelta = delta
					improved = true
				}
			}
		}

		if improved {
			best[moveDim] += moveDelta
			bestCost = moveCost
			if h.cfg.OnImprove != nil {
				h.cfg.OnImprove(iter, best, bestCost)
			}
		} else {
			step *= h.cfg.ShrinkFactor
		}
	}

	slog.Debug("Search hit iteration cap", "iterations", h.cfg.MaxIterations, "cost", bestCost)
	return Result{Best: best, Cost: bestCost, Iterations: h.cfg.MaxIterations, Status: StatusMaxIterations}
}
