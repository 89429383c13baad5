package solve

import (
	"context"
	"time"

	"github.com/mlaoire/pvdispatch/core/milp"
)

// Status is the termination status reported by an engine.
type Status int

const (
	// StatusOptimal means the engine proved the solution optimal, or
	// optimal within the requested gap tolerance.
	StatusOptimal Status = iota
	// StatusTimeLimit means the time bound expired. The outcome carries a
	// solution only when at least one incumbent was found.
	StatusTimeLimit
	// StatusInfeasible means the model has no feasible point.
	StatusInfeasible
	// StatusUnbounded means the objective can decrease without bound.
	StatusUnbounded
	// StatusError means the engine failed numerically.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusTimeLimit:
		return "time_limit"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// NoTimeLimit disables the wall-clock bound.
const NoTimeLimit time.Duration = -1

// Controls bounds the engine's effort. A zero TimeLimit is an
// already-expired budget: the engine must return immediately with whatever
// it has, which for a fresh model is nothing.
type Controls struct {
	// TimeLimit is the wall-clock bound. Negative disables it.
	TimeLimit time.Duration
	// Gap is the relative optimality-gap tolerance. The engine may stop as
	// soon as the incumbent is proven within this fraction of the best
	// bound. Zero demands a proven optimum.
	Gap float64
	// Verbose enables engine progress logging.
	Verbose bool
}

// DefaultControls mirrors the production run settings: five minutes of
// wall clock and a 1% gap.
func DefaultControls() Controls {
	return Controls{TimeLimit: 5 * time.Minute, Gap: 0.01}
}

// Outcome is what an engine reports back after termination.
type Outcome struct {
	Status Status
	// Incumbents counts feasible solutions found during the search.
	Incumbents int
	// Values holds one value per model column. Valid only when HasSolution
	// reports true.
	Values []float64
	// Objective is the objective value of the returned solution.
	Objective float64
}

// HasSolution reports whether the outcome carries usable variable values.
func (o Outcome) HasSolution() bool {
	switch o.Status {
	case StatusOptimal:
		return true
	case StatusTimeLimit:
		return o.Incumbents > 0
	default:
		return false
	}
}

// Engine is the boundary to the MILP solving engine. Implementations accept
// a model plus controls and report a termination status with variable
// values; anything satisfying this contract can be substituted.
type Engine interface {
	Solve(ctx context.Context, m *milp.Model, ctl Controls) (Outcome, error)
}
