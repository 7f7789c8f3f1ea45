package opt

import (
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our
// Optimizer interface. Population-based search has no step-threshold
// notion of convergence, so it always reports StatusMaxIterations.
type MayflyAdapter struct {
	maxIters     int
	popSize      int
	seed         int64
	lower, upper float64
}

// NewMayfly creates a Mayfly optimizer adapter. lower and upper bound
// every dimension of the search space (the external library uses scalar
// bounds).
func NewMayfly(maxIters, popSize int, seed int64, lower, upper float64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
		lower:    lower,
		upper:    upper,
	}
}

// Minimize executes the Mayfly optimization. The start candidate is
// used only as a fallback if the external library fails; the population
// is initialized randomly within the bounds.
func (m *MayflyAdapter) Minimize(eval Objective, start []float64) Result {
	config := mayfly.NewDefaultConfig()

	config.ObjectiveFunc = mayfly.ObjectiveFunction(eval)
	config.ProblemSize = len(start)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = m.lower
	config.UpperBound = m.upper
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return Result{
			Best:       start,
			Cost:       eval(start),
			Iterations: 0,
			Status:     StatusMaxIterations,
		}
	}

	return Result{
		Best:       result.GlobalBest.Position,
		Cost:       result.GlobalBest.Cost,
		Iterations: m.maxIters,
		Status:     StatusMaxIterations,
	}
}
