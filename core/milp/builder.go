package milp

import (
	"fmt"

	"github.com/mlaoire/pvdispatch/core/model"
)

// Variables records the column index of every decision variable, per time
// step, so values can be read back from a solution vector without knowledge
// of the column layout.
type Variables struct {
	SolarHousehold   []int // power from solar to household
	SolarBattery     []int // power from solar to battery
	SolarGrid        []int // power from solar to grid
	BatteryHousehold []int // power from battery to household
	GridBattery      []int // power from grid to battery
	GridHousehold    []int // power from grid to household
	StoredEnergy     []int // battery stored energy, kWh
	Charging         []int // binary, battery charging
	Discharging      []int // binary, battery discharging
	FromGrid         []int // binary, net flow is from the grid
}

func newVariables(steps int) *Variables {
	return &Variables{
		SolarHousehold:   make([]int, steps),
		SolarBattery:     make([]int, steps),
		SolarGrid:        make([]int, steps),
		BatteryHousehold: make([]int, steps),
		GridBattery:      make([]int, steps),
		GridHousehold:    make([]int, steps),
		StoredEnergy:     make([]int, steps),
		Charging:         make([]int, steps),
		Discharging:      make([]int, steps),
		FromGrid:         make([]int, steps),
	}
}

// Build constructs the full dispatch MILP for the given inputs: the
// variable set, the constraint set and the buy/sell objective. Identical
// inputs always produce an identical column and row layout.
//
// The grid-direction and battery-mode linkage constraints use big-M
// coefficients derived from the horizon maxima of the input data. These are
// the tightest sound bounds available per run; looser values would weaken
// the LP relaxation and slow the engine down without changing the optimum.
func Build(series model.Series, bat model.Battery, sellPrice float64, buyRates []float64) (*Model, *Variables, error) {
	if err := series.Validate(); err != nil {
		return nil, nil, err
	}
	if err := bat.Validate(); err != nil {
		return nil, nil, err
	}
	steps := series.Steps()
	if len(buyRates) != steps {
		return nil, nil, fmt.Errorf("milp: %d buy rates for %d steps", len(buyRates), steps)
	}

	// Conversion from power per step (W) to energy per step (kWh).
	c := series.ConversionFactor()

	m := &Model{}
	vars := newVariables(steps)

	minEnergy := bat.MinSoC * bat.CapacityKWh
	maxEnergy := bat.MaxSoC * bat.CapacityKWh

	for t := 0; t < steps; t++ {
		vars.SolarHousehold[t] = m.AddColumn(name("P_solar_household", t), 0, 0, Inf, Continuous)
		vars.SolarBattery[t] = m.AddColumn(name("P_solar_battery", t), 0, 0, Inf, Continuous)
		vars.SolarGrid[t] = m.AddColumn(name("P_solar_grid", t), -c*sellPrice, 0, Inf, Continuous)
		vars.BatteryHousehold[t] = m.AddColumn(name("P_battery_household", t), 0, 0, Inf, Continuous)
		vars.GridBattery[t] = m.AddColumn(name("P_grid_battery", t), c*buyRates[t], 0, Inf, Continuous)
		vars.GridHousehold[t] = m.AddColumn(name("P_grid_household", t), c*buyRates[t], 0, Inf, Continuous)
		// Stored-energy bounds encode the SoC window directly.
		vars.StoredEnergy[t] = m.AddColumn(name("SE", t), 0, minEnergy, maxEnergy, Continuous)
		vars.Charging[t] = m.AddColumn(name("BC", t), 0, 0, 1, Binary)
		vars.Discharging[t] = m.AddColumn(name("BD", t), 0, 0, 1, Binary)
		vars.FromGrid[t] = m.AddColumn(name("GF", t), 0, 0, 1, Binary)
	}

	// Big-M constants for the grid-direction linkage, recomputed per run
	// from the horizon maxima.
	importM := bat.MaxChargeRate + series.MaxLoad()
	exportM := series.MaxSolar()

	for t := 0; t < steps; t++ {
		// All solar production must be routed somewhere; there is no
		// curtailment variable.
		m.AddEq(name("solar_balance", t), series.Solar[t],
			Entry{vars.SolarHousehold[t], 1},
			Entry{vars.SolarBattery[t], 1},
			Entry{vars.SolarGrid[t], 1},
		)

		// Demand is fully served from solar, battery and grid; there is no
		// unmet-demand slack.
		m.AddEq(name("load_balance", t), series.Load[t],
			Entry{vars.SolarHousehold[t], 1},
			Entry{vars.BatteryHousehold[t], 1},
			Entry{vars.GridHousehold[t], 1},
		)

		// Battery dynamics. Charging is scaled down by efficiency before
		// being credited, discharging is scaled up by the inverse before
		// being debited, so losses always reduce usable energy.
		charge := c * bat.ChargeEfficiency
		discharge := c / bat.DischargeEfficiency
		if t == 0 {
			m.AddEq(name("battery_dynamics", t), bat.InitialSoC*bat.CapacityKWh,
				Entry{vars.StoredEnergy[t], 1},
				Entry{vars.SolarBattery[t], -charge},
				Entry{vars.GridBattery[t], -charge},
				Entry{vars.BatteryHousehold[t], discharge},
			)
		} else {
			m.AddEq(name("battery_dynamics", t), 0,
				Entry{vars.StoredEnergy[t], 1},
				Entry{vars.StoredEnergy[t-1], -1},
				Entry{vars.SolarBattery[t], -charge},
				Entry{vars.GridBattery[t], -charge},
				Entry{vars.BatteryHousehold[t], discharge},
			)
		}

		// Hardware rate limits.
		m.AddLe(name("charge_limit", t), bat.MaxChargeRate,
			Entry{vars.SolarBattery[t], 1},
			Entry{vars.GridBattery[t], 1},
		)
		m.AddLe(name("discharge_limit", t), bat.MaxDischargeRate,
			Entry{vars.BatteryHousehold[t], 1},
		)

		// Mode linkage. The rate limit itself is the tightest valid big-M:
		// any positive charging flow forces BC to 1, and likewise for BD.
		m.AddLe(name("charge_binary", t), 0,
			Entry{vars.SolarBattery[t], 1},
			Entry{vars.GridBattery[t], 1},
			Entry{vars.Charging[t], -bat.MaxChargeRate},
		)
		m.AddLe(name("discharge_binary", t), 0,
			Entry{vars.BatteryHousehold[t], 1},
			Entry{vars.Discharging[t], -bat.MaxDischargeRate},
		)

		// A battery never charges and discharges in the same step.
		m.AddLe(name("no_simultaneous", t), 1,
			Entry{vars.Charging[t], 1},
			Entry{vars.Discharging[t], 1},
		)

		// Grid direction linkage: import only when GF is 1, export only
		// when GF is 0.
		m.AddLe(name("grid_flow_from", t), 0,
			Entry{vars.GridHousehold[t], 1},
			Entry{vars.GridBattery[t], 1},
			Entry{vars.FromGrid[t], -importM},
		)
		m.AddLe(name("grid_flow_to", t), exportM,
			Entry{vars.SolarGrid[t], 1},
			Entry{vars.FromGrid[t], exportM},
		)
	}

	return m, vars, nil
}

func name(prefix string, t int) string {
	return fmt.Sprintf("%s_%d", prefix, t)
}
