// Package solve runs the MILP engine on a dispatch model and maps the
// solution back into a structured result.
package solve

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mlaoire/pvdispatch/core/logger"
	"github.com/mlaoire/pvdispatch/core/milp"
	"github.com/mlaoire/pvdispatch/core/model"
)

// ErrInfeasible is returned when the model has no feasible point. With hard
// balance equalities this is the only signal for physically unsatisfiable
// scenarios.
var ErrInfeasible = errors.New("model infeasible")

// ErrNoSolution is returned when the engine terminated without any feasible
// incumbent, for example on an expired time bound or an unbounded model.
var ErrNoSolution = errors.New("no feasible solution found")

// Solver orchestrates a single solve: it invokes the engine, interprets the
// termination status and extracts the result set.
type Solver struct {
	engine Engine
	log    logger.Logger
}

// New returns a Solver backed by the given engine.
func New(engine Engine, log logger.Logger) *Solver {
	return &Solver{engine: engine, log: log}
}

// Run solves the model and, on success, extracts every decision variable at
// every step into a Result. Three terminations are distinguished: a proven
// optimum, a best incumbent at the time limit, and failure with no result.
func (s *Solver) Run(ctx context.Context, m *milp.Model, vars *milp.Variables, series model.Series, bat model.Battery, ctl Controls) (*model.Result, error) {
	out, err := s.engine.Solve(ctx, m, ctl)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	switch {
	case out.Status == StatusOptimal:
		s.log.Infof("optimal solution found, objective %.4f", out.Objective)
	case out.Status == StatusTimeLimit && out.Incumbents > 0:
		s.log.Warnf("time limit reached, best objective %.4f after %d incumbents", out.Objective, out.Incumbents)
	case out.Status == StatusInfeasible:
		return nil, ErrInfeasible
	default:
		return nil, fmt.Errorf("%w: engine status %s", ErrNoSolution, out.Status)
	}

	res, err := extract(out, vars, series, bat)
	if err != nil {
		return nil, err
	}
	res.Optimal = out.Status == StatusOptimal
	return res, nil
}

// extract maps the solution vector into the result set using the column
// indexes recorded by the builder.
func extract(out Outcome, vars *milp.Variables, series model.Series, bat model.Battery) (*model.Result, error) {
	steps := series.Steps()
	if len(vars.StoredEnergy) != steps {
		return nil, fmt.Errorf("solve: variable set covers %d steps, series has %d", len(vars.StoredEnergy), steps)
	}

	res := &model.Result{
		RunID:            uuid.NewString(),
		Times:            series.Times,
		Solar:            series.Solar,
		Load:             series.Load,
		SolarHousehold:   make([]float64, steps),
		SolarBattery:     make([]float64, steps),
		SolarGrid:        make([]float64, steps),
		BatteryHousehold: make([]float64, steps),
		GridBattery:      make([]float64, steps),
		GridHousehold:    make([]float64, steps),
		StoredEnergy:     make([]float64, steps),
		SoCPercent:       make([]float64, steps),
		Charging:         make([]bool, steps),
		Discharging:      make([]bool, steps),
		FromGrid:         make([]bool, steps),
		TotalCost:        out.Objective,
	}

	value := func(col int) (float64, error) {
		if col < 0 || col >= len(out.Values) {
			return 0, fmt.Errorf("solve: column %d outside solution of length %d", col, len(out.Values))
		}
		return out.Values[col], nil
	}

	for t := 0; t < steps; t++ {
		var err error
		if res.SolarHousehold[t], err = value(vars.SolarHousehold[t]); err != nil {
			return nil, err
		}
		if res.SolarBattery[t], err = value(vars.SolarBattery[t]); err != nil {
			return nil, err
		}
		if res.SolarGrid[t], err = value(vars.SolarGrid[t]); err != nil {
			return nil, err
		}
		if res.BatteryHousehold[t], err = value(vars.BatteryHousehold[t]); err != nil {
			return nil, err
		}
		if res.GridBattery[t], err = value(vars.GridBattery[t]); err != nil {
			return nil, err
		}
		if res.GridHousehold[t], err = value(vars.GridHousehold[t]); err != nil {
			return nil, err
		}
		if res.StoredEnergy[t], err = value(vars.StoredEnergy[t]); err != nil {
			return nil, err
		}
		if bat.CapacityKWh > 0 {
			res.SoCPercent[t] = res.StoredEnergy[t] / bat.CapacityKWh * 100
		}
		bc, err := value(vars.Charging[t])
		if err != nil {
			return nil, err
		}
		bd, err := value(vars.Discharging[t])
		if err != nil {
			return nil, err
		}
		gf, err := value(vars.FromGrid[t])
		if err != nil {
			return nil, err
		}
		res.Charging[t] = bc > 0.5
		res.Discharging[t] = bd > 0.5
		res.FromGrid[t] = gf > 0.5
	}
	return res, nil
}
