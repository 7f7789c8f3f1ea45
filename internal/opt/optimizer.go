package opt

// Objective is a cost function over a parameter vector; lower is better.
type Objective func(params []float64) float64

// Status reports how a search ended.
type Status string

const (
	// StatusConverged means the step size fell below the configured
	// minimum: no further meaningful refinement was possible.
	StatusConverged Status = "converged"

	// StatusMaxIterations means the iteration cap (or the wall-clock
	// budget) was exhausted first. This is a normal outcome, not an
	// error; the best candidate so far is still returned.
	StatusMaxIterations Status = "max_iterations_reached"
)

// Progress is invoked whenever the best-known cost improves.
type Progress func(iteration int, best []float64, cost float64)

// Result is the outcome of a search.
type Result struct {
	Best       []float64
	Cost       float64
	Iterations int
	Status     Status
}

// Optimizer minimizes an objective starting from an initial candidate.
type Optimizer interface {
	Minimize(eval Objective, start []float64) Result
}
